package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gopayout/internal/domain"
	"github.com/iho/gopayout/internal/infrastructure/postgres/generated"
	"github.com/iho/gopayout/internal/usecase"
)

// queriesFor binds generated queries to the pgx transaction behind tx.
func queriesFor(tx usecase.Transaction) *generated.Queries {
	return generated.New(tx.(*Tx).PgxTx())
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.StartOfDay(t), Valid: true}
}

// pgRange converts a nullable MIN/MAX pair; nil when the table had no rows.
func pgRange(lo, hi pgtype.Timestamptz) *domain.DateRange {
	if !lo.Valid || !hi.Valid {
		return nil
	}
	return &domain.DateRange{Min: lo.Time.UTC(), Max: hi.Time.UTC()}
}
