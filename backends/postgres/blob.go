package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

// largeObject wraps a PostgreSQL large object (lo_*), the backend's Blob
// contract implementation, grounded in SOCI's postgresql/blob.cpp.
type largeObject struct {
	session *Session
	tx      pgx.Tx
	oid     uint32
	fd      int32
}

func newLargeObject(s *Session) (*largeObject, error) {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	los := tx.LargeObjects()
	oid, err := los.Create(ctx, 0)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	fd, err := los.Open(ctx, oid, pgx.LargeObjectModeRead|pgx.LargeObjectModeWrite)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	return &largeObject{session: s, tx: tx, oid: oid, fd: fd}, nil
}

func (l *largeObject) Length(ctx context.Context) (int64, error) {
	lo := l.tx.LargeObjects()
	obj, err := lo.Open(ctx, l.oid, pgx.LargeObjectModeRead)
	if err != nil {
		return 0, err
	}
	n, err := obj.Seek(ctx, 0, 2)
	return n, err
}

func (l *largeObject) Read(ctx context.Context, offset int64, buf []byte) (int, error) {
	lo := l.tx.LargeObjects()
	obj, err := lo.Open(ctx, l.oid, pgx.LargeObjectModeRead)
	if err != nil {
		return 0, err
	}
	if _, err := obj.Seek(ctx, offset, 0); err != nil {
		return 0, err
	}
	return obj.Read(ctx, buf)
}

func (l *largeObject) Write(ctx context.Context, offset int64, data []byte) (int, error) {
	lo := l.tx.LargeObjects()
	obj, err := lo.Open(ctx, l.oid, pgx.LargeObjectModeWrite)
	if err != nil {
		return 0, err
	}
	if _, err := obj.Seek(ctx, offset, 0); err != nil {
		return 0, err
	}
	return obj.Write(ctx, data)
}

func (l *largeObject) Append(ctx context.Context, data []byte) (int, error) {
	n, err := l.Length(ctx)
	if err != nil {
		return 0, err
	}
	return l.Write(ctx, n, data)
}

func (l *largeObject) Trim(ctx context.Context, newLength int64) error {
	lo := l.tx.LargeObjects()
	obj, err := lo.Open(ctx, l.oid, pgx.LargeObjectModeWrite)
	if err != nil {
		return err
	}
	return obj.Truncate(ctx, newLength)
}

var _ backend.BlobBackend = (*largeObject)(nil)
