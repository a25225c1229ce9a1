package mysqlrepo

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-listings/internal/auctionerrors"
	model "auction-listings/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

const mysqlDuplicateEntry = 1062

// MySQLRepo is a MySQL-backed implementation of repository.AuctionDB.
// Uniqueness invariants ((name, category) per listing, (user, listing)
// per watch entry, (listing, author) per comment) are enforced by
// unique keys, so duplicate races surface as duplicate-entry errors and
// map onto the same taxonomy as the in-memory repository.
type MySQLRepo struct {
	db *sql.DB
}

// NewMySQLRepo creates a repository over an open database handle
func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{db: db}
}

// Open connects to MySQL and applies pool settings
func Open(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("mysql: failed to ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist yet
func (r *MySQLRepo) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            category_id VARCHAR(36) PRIMARY KEY,
            name VARCHAR(64) NOT NULL,
            UNIQUE KEY uq_category_name (name)
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            user_id VARCHAR(36) PRIMARY KEY,
            username VARCHAR(150) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS listings (
            listing_id VARCHAR(36) PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            description TEXT NOT NULL,
            image_url VARCHAR(500) NOT NULL DEFAULT '',
            starting_price DECIMAL(12,2) NOT NULL,
            category_id VARCHAR(36) NOT NULL,
            originator_id VARCHAR(36) NOT NULL,
            active TINYINT(1) NOT NULL DEFAULT 1,
            created_at DATETIME(6) NOT NULL,
            UNIQUE KEY uq_listing_name (category_id, name),
            CONSTRAINT fk_listing_category FOREIGN KEY (category_id) REFERENCES categories (category_id)
        )`,
		`CREATE TABLE IF NOT EXISTS bids (
            bid_id VARCHAR(36) PRIMARY KEY,
            listing_id VARCHAR(36) NOT NULL,
            bidder_id VARCHAR(36) NOT NULL,
            price DECIMAL(12,2) NOT NULL,
            created_at DATETIME(6) NOT NULL,
            KEY idx_bid_listing (listing_id),
            CONSTRAINT fk_bid_listing FOREIGN KEY (listing_id) REFERENCES listings (listing_id) ON DELETE CASCADE
        )`,
		`CREATE TABLE IF NOT EXISTS watch_entries (
            watch_id VARCHAR(36) PRIMARY KEY,
            listing_id VARCHAR(36) NOT NULL,
            user_id VARCHAR(36) NOT NULL,
            created_at DATETIME(6) NOT NULL,
            UNIQUE KEY uq_watch_pair (user_id, listing_id),
            CONSTRAINT fk_watch_listing FOREIGN KEY (listing_id) REFERENCES listings (listing_id) ON DELETE CASCADE
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            comment_id VARCHAR(36) PRIMARY KEY,
            listing_id VARCHAR(36) NOT NULL,
            author_id VARCHAR(36) NOT NULL,
            body TEXT NOT NULL,
            created_at DATETIME(6) NOT NULL,
            UNIQUE KEY uq_comment_pair (listing_id, author_id),
            CONSTRAINT fk_comment_listing FOREIGN KEY (listing_id) REFERENCES listings (listing_id) ON DELETE CASCADE
        )`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("mysql: failed to ensure schema: %w", err)
		}
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// CreateCategory inserts a category; the unique key rejects duplicates
func (r *MySQLRepo) CreateCategory(category model.Category) error {
	_, err := r.db.Exec(`INSERT INTO categories (category_id, name) VALUES (?, ?)`,
		category.CategoryID, category.Name)
	if isDuplicateEntry(err) {
		return fmt.Errorf("create category %q: %w", category.Name, auctionerrors.ErrDuplicateCategory)
	}
	return err
}

// GetCategoryByName resolves a category by its unique name
func (r *MySQLRepo) GetCategoryByName(name string) (model.Category, error) {
	var category model.Category
	err := r.db.QueryRow(`SELECT category_id, name FROM categories WHERE name = ?`, name).
		Scan(&category.CategoryID, &category.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("get category %q: %w", name, auctionerrors.ErrCategoryNotFound)
	}
	return category, err
}

// GetCategories returns all categories sorted by name
func (r *MySQLRepo) GetCategories() ([]model.Category, error) {
	rows, err := r.db.Query(`SELECT category_id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.CategoryID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateUser inserts a user reference record
func (r *MySQLRepo) CreateUser(user model.User) error {
	_, err := r.db.Exec(`INSERT INTO users (user_id, username) VALUES (?, ?)`,
		user.UserID, user.Username)
	return err
}

// GetUser returns a user by ID
func (r *MySQLRepo) GetUser(userID string) (model.User, error) {
	var user model.User
	err := r.db.QueryRow(`SELECT user_id, username FROM users WHERE user_id = ?`, userID).
		Scan(&user.UserID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, err
}

// CreateListing inserts a listing; the (category_id, name) unique key
// makes the uniqueness check atomic with the insert
func (r *MySQLRepo) CreateListing(listing model.Listing) error {
	_, err := r.db.Exec(`
        INSERT INTO listings (listing_id, name, description, image_url, starting_price, category_id, originator_id, active, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.ListingID, listing.Name, listing.Description, listing.ImageURL,
		listing.StartingPrice.String(), listing.CategoryID, listing.OriginatorID,
		listing.Active, listing.CreatedAt)
	if isDuplicateEntry(err) {
		return fmt.Errorf("create listing %q: %w", listing.Name, auctionerrors.ErrDuplicateListing)
	}
	return err
}

func scanListing(row interface{ Scan(...any) error }) (model.Listing, error) {
	var listing model.Listing
	var startingPrice string
	err := row.Scan(&listing.ListingID, &listing.Name, &listing.Description, &listing.ImageURL,
		&startingPrice, &listing.CategoryID, &listing.OriginatorID, &listing.Active, &listing.CreatedAt)
	if err != nil {
		return model.Listing{}, err
	}
	listing.StartingPrice, err = decimal.NewFromString(startingPrice)
	return listing, err
}

const listingColumns = `listing_id, name, description, image_url, starting_price, category_id, originator_id, active, created_at`

// GetListing returns a listing by ID
func (r *MySQLRepo) GetListing(listingID string) (model.Listing, error) {
	row := r.db.QueryRow(`SELECT `+listingColumns+` FROM listings WHERE listing_id = ?`, listingID)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, err
}

// SetListingInactive flips a listing's active flag to false
func (r *MySQLRepo) SetListingInactive(listingID string) error {
	if _, err := r.GetListing(listingID); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE listings SET active = 0 WHERE listing_id = ?`, listingID)
	return err
}

// DeleteListing removes a listing; bids, watch entries and comments go
// with it through the cascading foreign keys
func (r *MySQLRepo) DeleteListing(listingID string) error {
	res, err := r.db.Exec(`DELETE FROM listings WHERE listing_id = ?`, listingID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

func (r *MySQLRepo) queryListings(query string, args ...any) ([]model.Listing, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// GetActiveListings returns all active listings, newest first
func (r *MySQLRepo) GetActiveListings() ([]model.Listing, error) {
	return r.queryListings(`SELECT ` + listingColumns + ` FROM listings WHERE active = 1 ORDER BY created_at DESC`)
}

// GetListingsByCategory returns the active listings of a category, newest first
func (r *MySQLRepo) GetListingsByCategory(categoryID string) ([]model.Listing, error) {
	var exists int
	err := r.db.QueryRow(`SELECT 1 FROM categories WHERE category_id = ?`, categoryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listings in category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	if err != nil {
		return nil, err
	}
	return r.queryListings(`SELECT `+listingColumns+` FROM listings WHERE category_id = ? AND active = 1 ORDER BY created_at DESC`, categoryID)
}

// GetListingsByUser returns all listings created by a user, newest first
func (r *MySQLRepo) GetListingsByUser(userID string) ([]model.Listing, error) {
	return r.queryListings(`SELECT `+listingColumns+` FROM listings WHERE originator_id = ? ORDER BY created_at DESC`, userID)
}

// RecordBidForListing inserts an accepted bid
func (r *MySQLRepo) RecordBidForListing(bid model.Bid) error {
	_, err := r.db.Exec(`
        INSERT INTO bids (bid_id, listing_id, bidder_id, price, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		bid.BidID, bid.ListingID, bid.BidderID, bid.Price.String(), bid.CreatedAt)
	return err
}

// GetBidsByListing returns all bids for a listing in acceptance order
func (r *MySQLRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
        SELECT bid_id, listing_id, bidder_id, price, created_at
        FROM bids WHERE listing_id = ? ORDER BY created_at ASC`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var bid model.Bid
		var price string
		if err := rows.Scan(&bid.BidID, &bid.ListingID, &bid.BidderID, &price, &bid.CreatedAt); err != nil {
			return nil, err
		}
		if bid.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// GetHighestBid returns the highest-priced bid for a listing
func (r *MySQLRepo) GetHighestBid(listingID string) (model.Bid, error) {
	var bid model.Bid
	var price string
	err := r.db.QueryRow(`
        SELECT bid_id, listing_id, bidder_id, price, created_at
        FROM bids WHERE listing_id = ? ORDER BY price DESC, created_at ASC LIMIT 1`, listingID).
		Scan(&bid.BidID, &bid.ListingID, &bid.BidderID, &price, &bid.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, lerr := r.GetListing(listingID); lerr != nil {
			return model.Bid{}, lerr
		}
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, err
	}
	bid.Price, err = decimal.NewFromString(price)
	return bid, err
}

// AddWatchEntry inserts a watch entry; the (user_id, listing_id) unique
// key guards against two concurrent adds both succeeding
func (r *MySQLRepo) AddWatchEntry(entry model.WatchEntry) error {
	if _, err := r.GetListing(entry.ListingID); err != nil {
		return err
	}

	_, err := r.db.Exec(`
        INSERT INTO watch_entries (watch_id, listing_id, user_id, created_at)
        VALUES (?, ?, ?, ?)`,
		entry.WatchID, entry.ListingID, entry.UserID, entry.CreatedAt)
	if isDuplicateEntry(err) {
		return fmt.Errorf("watch listing %s: %w", entry.ListingID, auctionerrors.ErrAlreadyWatching)
	}
	return err
}

// RemoveWatchEntry deletes a user's watch entry for a listing
func (r *MySQLRepo) RemoveWatchEntry(userID, listingID string) error {
	res, err := r.db.Exec(`DELETE FROM watch_entries WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, lerr := r.GetListing(listingID); lerr != nil {
			return lerr
		}
		return fmt.Errorf("unwatch listing %s: %w", listingID, auctionerrors.ErrNotWatching)
	}
	return nil
}

// GetWatchedListings returns the listings a user watches, most recently
// watched first
func (r *MySQLRepo) GetWatchedListings(userID string) ([]model.Listing, error) {
	return r.queryListings(`
        SELECT l.listing_id, l.name, l.description, l.image_url, l.starting_price,
               l.category_id, l.originator_id, l.active, l.created_at
        FROM watch_entries w
        JOIN listings l ON l.listing_id = w.listing_id
        WHERE w.user_id = ?
        ORDER BY w.created_at DESC`, userID)
}

// AddComment inserts a comment; one per (listing, author) pair
func (r *MySQLRepo) AddComment(comment model.Comment) error {
	if _, err := r.GetListing(comment.ListingID); err != nil {
		return err
	}

	_, err := r.db.Exec(`
        INSERT INTO comments (comment_id, listing_id, author_id, body, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		comment.CommentID, comment.ListingID, comment.AuthorID, comment.Body, comment.CreatedAt)
	if isDuplicateEntry(err) {
		return fmt.Errorf("comment on listing %s: %w", comment.ListingID, auctionerrors.ErrDuplicateComment)
	}
	return err
}

// GetCommentsByListing returns a listing's comments, newest first
func (r *MySQLRepo) GetCommentsByListing(listingID string) ([]model.Comment, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
        SELECT comment_id, listing_id, author_id, body, created_at
        FROM comments WHERE listing_id = ? ORDER BY created_at DESC`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.CommentID, &c.ListingID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
