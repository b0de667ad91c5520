package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	driver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"staybook/internal/domain"
)

// MySQL server error numbers we translate.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func isMySQLErr(err error, number uint16) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// escapeLike makes s safe to embed in a LIKE pattern (backslash is MySQL's default escape).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

type Repo struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// New returns a repository implementing the hotel, booking and account ports.
func New(db *sql.DB) *Repo {
	return &Repo{
		db:    db,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID: func() string { return uuid.NewString() },
	}
}

// ---- hotels ----

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		valStr(h.Description),
		h.Location,
		h.City,
		h.PricePerNight.Cents(),
		h.Rating,
		valJSON(h.Amenities),
		valStr(h.ImageURL),
		h.TotalRooms,
	)
	return errors.Wrapf(err, "upsert hotel %s", h.ID)
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var desc, img sql.NullString
	var cents int64
	var amenitiesJSON []byte
	if err := s.Scan(
		&h.ID,
		&h.Name,
		&desc,
		&h.Location,
		&h.City,
		&cents,
		&h.Rating,
		&amenitiesJSON,
		&img,
		&h.TotalRooms,
	); err != nil {
		return domain.Hotel{}, err
	}
	h.PricePerNight = domain.Cents(cents)
	if desc.Valid {
		d := desc.String
		h.Description = &d
	}
	if img.Valid && strings.TrimSpace(img.String) != "" {
		u := img.String
		h.ImageURL = &u
	}
	if len(amenitiesJSON) > 0 {
		_ = json.Unmarshal(amenitiesJSON, &h.Amenities)
	}
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if city := strings.TrimSpace(q.City); city != "" {
		rows, err = r.db.QueryContext(ctx, searchHotelsSQL, "%"+escapeLike(strings.ToLower(city))+"%")
	} else {
		rows, err = r.db.QueryContext(ctx, listHotelsSQL)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query hotels")
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan hotel")
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate hotels")
	}
	return out, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, bool, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Hotel{}, false, nil
		}
		return domain.Hotel{}, false, errors.Wrapf(err, "get hotel %s", id)
	}
	return h, true, nil
}

// ---- bookings ----

func (r *Repo) InsertBooking(ctx context.Context, nb domain.NewBooking) (domain.Booking, error) {
	b := domain.Booking{
		ID:         r.newID(),
		UserID:     nb.UserID,
		HotelID:    nb.HotelID,
		CheckIn:    nb.CheckIn,
		CheckOut:   nb.CheckOut,
		Guests:     nb.Guests,
		TotalPrice: nb.TotalPrice,
		Status:     nb.Status,
		CreatedAt:  r.now(),
	}
	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.UserID,
		b.HotelID,
		b.CheckIn.Format("2006-01-02"),
		b.CheckOut.Format("2006-01-02"),
		b.Guests,
		b.TotalPrice.Cents(),
		string(b.Status),
		b.CreatedAt,
	)
	if err != nil {
		if isMySQLErr(err, errNoReferencedRow) {
			return domain.Booking{}, errors.Mark(errors.Wrapf(err, "insert booking for hotel %s", b.HotelID), domain.ErrNotFound)
		}
		return domain.Booking{}, errors.Wrap(err, "insert booking")
	}
	return b, nil
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var cents int64
	var status string
	if err := s.Scan(
		&b.ID,
		&b.UserID,
		&b.HotelID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&cents,
		&status,
		&b.CreatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.TotalPrice = domain.Cents(cents)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *Repo) ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsByUserSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query bookings")
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan booking")
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate bookings")
	}
	return out, nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, false, nil
		}
		return domain.Booking{}, false, errors.Wrapf(err, "get booking %s", id)
	}
	return b, true, nil
}

// ---- accounts ----

func (r *Repo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		a.ID,
		strings.ToLower(a.Email),
		a.PasswordHash,
		a.FullName,
		a.CreatedAt,
	)
	if err != nil {
		if isMySQLErr(err, errDupEntry) {
			return errors.Mark(errors.Wrap(err, "insert user"), domain.ErrAccountExists)
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *Repo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, getUserByEmailSQL, strings.ToLower(email)).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, errors.Wrap(err, "get user")
	}
	return a, true, nil
}
