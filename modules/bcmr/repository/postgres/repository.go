package postgres

import (
	"github.com/gaze-network/bcmr-indexer/internal/postgres"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

var _ datagateway.BCMRDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries *gen.Queries
	tx      pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: gen.New(db),
	}
}
