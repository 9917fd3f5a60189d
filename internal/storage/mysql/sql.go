package mysql

const bookingColumns = "id, resident_id, start_date, end_date, parking, status, created_at"

const insertBookingSQL = `
INSERT INTO bookings
  (id, resident_id, start_date, end_date, parking, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Half-open overlap: existing.start < new.end AND new.start < existing.end.
// FOR UPDATE takes next-key locks on the range index so a concurrent insert
// into the same gap waits for this transaction.
const lockOverlappingSQL = `
SELECT id FROM bookings
WHERE status <> 'cancelled'
  AND start_date < ?
  AND end_date > ?
ORDER BY start_date, id
FOR UPDATE
`

const cancelBookingSQL = `
UPDATE bookings SET status = 'cancelled'
WHERE id = ? AND status <> 'cancelled'
`

const existsBookingSQL = `SELECT 1 FROM bookings WHERE id = ?`

const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Active bookings intersecting [from, to).
const listActiveSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE status <> 'cancelled'
  AND start_date < ?
  AND end_date > ?
ORDER BY start_date, id
`

// Bookings of any status with from <= start < to.
const listStartingBetweenSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE start_date >= ?
  AND start_date < ?
ORDER BY start_date, id
`
