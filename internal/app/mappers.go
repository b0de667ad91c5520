package app

import (
	"math"
	"strconv"
	"strings"

	"staybook/internal/domain"
)

// Cupid documents are loosely shaped; each field is tried under a few names.
var propertyAliases = map[string][]string{
	"id":          {"hotel_id", "cupid_id", "id"},
	"name":        {"hotel_name", "name"},
	"description": {"description", "markdown_description"},
	"city":        {"address.city", "city"},
	"address":     {"address.address", "address.line", "address", "full_address"},
	"country":     {"address.country", "country"},
	"rating":      {"rating", "stars", "rating.stars"},
	"rooms":       {"number_of_rooms", "rooms_count", "total_rooms"},
	"rate":        {"price_per_night", "min_rate", "rates.from"},
	"amenities":   {"facilities", "amenities"},
	"images":      {"main_image_th", "photos", "images"},
}

// lookupAny walks a dot path through nested maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = obj[part]; !ok {
			return nil
		}
	}
	return cur
}

func firstString(m map[string]any, key string) string {
	for _, p := range propertyAliases[key] {
		if s, ok := lookupAny(m, p).(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat accepts numbers and numeric strings, including "8,5".
func firstFloat(m map[string]any, key string) (float64, bool) {
	for _, p := range propertyAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstStrings accepts a bare string, a list of strings, or a list of
// objects carrying url/name.
func firstStrings(m map[string]any, key string) []string {
	for _, p := range propertyAliases[key] {
		switch raw := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(raw); s != "" {
				return []string{s}
			}
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					for _, k := range []string{"url", "name", "src"} {
						if s, ok := t[k].(string); ok && s != "" {
							out = append(out, s)
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

// catalogDefaults fill fields the catalogue does not carry.
type catalogDefaults struct {
	NightlyRate domain.Money
	TotalRooms  int
}

// mapProperty turns a Cupid property document into a Hotel. ok is false when
// the document has no usable id or name.
func mapProperty(id int64, p map[string]any, d catalogDefaults) (domain.Hotel, bool) {
	hid := strconv.FormatInt(id, 10)
	if f, ok := firstFloat(p, "id"); ok && f > 0 {
		hid = strconv.FormatInt(int64(f), 10)
	}
	name := firstString(p, "name")
	if name == "" {
		return domain.Hotel{}, false
	}

	h := domain.Hotel{
		ID:            hid,
		Name:          name,
		City:          firstString(p, "city"),
		Location:      joinNonEmpty(", ", firstString(p, "address"), firstString(p, "city"), firstString(p, "country")),
		PricePerNight: d.NightlyRate,
		TotalRooms:    d.TotalRooms,
		Amenities:     firstStrings(p, "amenities"),
	}
	if desc := firstString(p, "description"); desc != "" {
		h.Description = &desc
	}
	if imgs := firstStrings(p, "images"); len(imgs) > 0 {
		h.ImageURL = &imgs[0]
	}
	if r, ok := firstFloat(p, "rating"); ok {
		h.Rating = math.Round(math.Max(0, math.Min(5, r))*10) / 10
	}
	if n, ok := firstFloat(p, "rooms"); ok && n >= 1 {
		h.TotalRooms = int(n)
	}
	if rate, ok := firstFloat(p, "rate"); ok && rate >= 0 {
		if m, err := domain.FromFloat(rate); err == nil {
			h.PricePerNight = m
		}
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	return h, true
}
