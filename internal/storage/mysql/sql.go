package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, description, location, city, price_per_night_cents, rating, amenities, image_url, total_rooms)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                  = VALUES(name),
  description           = VALUES(description),
  location              = VALUES(location),
  city                  = VALUES(city),
  price_per_night_cents = VALUES(price_per_night_cents),
  rating                = VALUES(rating),
  amenities             = VALUES(amenities),
  image_url             = VALUES(image_url),
  total_rooms           = VALUES(total_rooms),
  updated_at            = CURRENT_TIMESTAMP
`

const hotelColumns = `id, name, description, location, city, price_per_night_cents, rating, amenities, image_url, total_rooms`

// Highest rated first; name and id only break ties so pages are stable.
const listHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
ORDER BY rating DESC, name ASC, id ASC
`

// Case-insensitive substring match on city; the argument is an escaped LIKE pattern.
const searchHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE LOWER(city) LIKE ?
ORDER BY rating DESC, name ASC, id ASC
`

const getHotelSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE id = ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, hotel_id, check_in_date, check_out_date, guests, total_price_cents, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const bookingColumns = `id, user_id, hotel_id, check_in_date, check_out_date, guests, total_price_cents, status, created_at`

// Newest first; id breaks ties between rows sharing a microsecond.
const listBookingsByUserSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

const getBookingSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = ?
`

const insertUserSQL = `
INSERT INTO users (id, email, password_hash, full_name, created_at)
VALUES (?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, email, password_hash, full_name, created_at
FROM users
WHERE email = ?
`
