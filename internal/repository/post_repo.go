package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ugorji/go/codec"

	"github.com/evetabi/hotornot/internal/domain"
)

// PostRepository persists Posts as a single CBOR-encoded blob per row,
// mirroring the original canister's in-memory aggregate rather than
// normalizing slots/rooms/bets into their own tables: the whole nested
// ledger is read, mutated in process by internal/domain, and written back
// atomically under a row lock, the same shape as market_repo.go's
// FOR-UPDATE-then-update pattern applied to a single opaque column instead
// of scalar fields.
type PostRepository struct {
	db     *sqlx.DB
	handle *codec.CborHandle
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db, handle: new(codec.CborHandle)}
}

// encode serialises v as CBOR prefixed with its own length as a 4-byte
// little-endian uint32, so the blob is self-delimiting if ever concatenated
// into a larger stream (e.g. a future WAL/replication export).
func (r *PostRepository) encode(v interface{}) ([]byte, error) {
	var body bytes.Buffer
	enc := codec.NewEncoder(&body, r.handle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("post_repo.encode: %w", err)
	}

	out := make([]byte, 4+body.Len())
	binary.LittleEndian.PutUint32(out, uint32(body.Len()))
	copy(out[4:], body.Bytes())
	return out, nil
}

func (r *PostRepository) decode(blob []byte, v interface{}) error {
	if len(blob) < 4 {
		return fmt.Errorf("post_repo.decode: blob too short (%d bytes)", len(blob))
	}
	n := binary.LittleEndian.Uint32(blob[:4])
	if int(n) > len(blob)-4 {
		return fmt.Errorf("post_repo.decode: length prefix %d exceeds remaining %d bytes", n, len(blob)-4)
	}
	dec := codec.NewDecoder(bytes.NewReader(blob[4:4+n]), r.handle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("post_repo.decode: %w", err)
	}
	return nil
}

type postRow struct {
	ID        uint64 `db:"id"`
	Owner     string `db:"owner"`
	CreatedAt int64  `db:"created_at"`
	Ledger    []byte `db:"hot_or_not_details"`
}

func (r *PostRepository) toDomain(row *postRow) (*domain.Post, error) {
	owner, err := domain.ParsePrincipalText(row.Owner)
	if err != nil {
		return nil, fmt.Errorf("post_repo: stored owner principal %q is invalid: %w", row.Owner, err)
	}
	post := &domain.Post{
		ID:        row.ID,
		Owner:     owner,
		CreatedAt: timeFromUnix(row.CreatedAt),
	}
	if len(row.Ledger) > 0 {
		var details domain.HotOrNotDetails
		if err := r.decode(row.Ledger, &details); err != nil {
			return nil, err
		}
		post.HotOrNot = &details
	}
	return post, nil
}

// Create inserts a new post row with an empty ledger.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, owner, created_at, hot_or_not_details)
		VALUES ($1, $2, $3, NULL)`,
		post.ID, post.Owner.String(), post.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("post_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a post and decodes its ledger, if any.
func (r *PostRepository) GetByID(ctx context.Context, id uint64) (*domain.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM posts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("post_repo.GetByID: %w", err)
	}
	return r.toDomain(&row)
}

// GetByIDForUpdate fetches a post inside tx with a row lock held until the
// transaction ends, for the read-mutate-write cycle a bet placement or
// tabulation call performs.
func (r *PostRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uint64) (*domain.Post, error) {
	var row postRow
	err := tx.GetContext(ctx, &row, `SELECT * FROM posts WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("post_repo.GetByIDForUpdate: %w", err)
	}
	return r.toDomain(&row)
}

// Save re-encodes post.HotOrNot and writes it back. Call only while still
// holding the row lock taken by GetByIDForUpdate, within the same tx.
func (r *PostRepository) Save(ctx context.Context, tx *sqlx.Tx, post *domain.Post) error {
	var blob []byte
	if post.HotOrNot != nil {
		encoded, err := r.encode(post.HotOrNot)
		if err != nil {
			return err
		}
		blob = encoded
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE posts SET hot_or_not_details = $1 WHERE id = $2`, blob, post.ID)
	if err != nil {
		return fmt.Errorf("post_repo.Save: %w", err)
	}
	return nil
}

// BeginTx starts a transaction for a single placement/tabulation cycle.
func (r *PostRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// List returns a paginated list of posts, most recently created first, for
// the back-office post browser.
func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*domain.Post, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts`); err != nil {
		return nil, 0, fmt.Errorf("post_repo.List count: %w", err)
	}

	var rows []postRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("post_repo.List select: %w", err)
	}

	posts := make([]*domain.Post, 0, len(rows))
	for i := range rows {
		post, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, nil
}

// ListOpenWithUntabulatedSlots returns post ids whose contest window has
// closed for at least one elapsed slot that may still need tabulation —
// the scheduler's candidate set for each tick. The caller re-derives which
// specific slots are due from the post's own CreatedAt once loaded.
func (r *PostRepository) ListOpenWithUntabulatedSlots(ctx context.Context, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM posts
		WHERE hot_or_not_details IS NOT NULL
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("post_repo.ListOpenWithUntabulatedSlots: %w", err)
	}
	return ids, nil
}
