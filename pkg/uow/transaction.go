package uow

import "github.com/jackc/pgx/v5"

// transaction реализация TX: выдает репозитории, созданные поверх pgx.Tx.
type transaction struct {
	tx           pgx.Tx
	repositories map[RepositoryName]RepositoryFactory
}

func newTransaction(tx pgx.Tx, repositories map[RepositoryName]RepositoryFactory) *transaction {
	return &transaction{tx: tx, repositories: repositories}
}

func (t *transaction) Get(name RepositoryName) (Repository, error) {
	if factory, ok := t.repositories[name]; ok {
		return factory(t.tx), nil
	}
	return nil, ErrRepositoryNotRegistered
}
