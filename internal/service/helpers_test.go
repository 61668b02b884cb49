package service_test

import (
	"testing"

	"course_registration/internal/service"
	"course_registration/internal/testutil"
	"course_registration/internal/utils"
)

type fixture struct {
	accounts *service.AccountStore
	catalog  *service.Catalog
	ledger   *service.Ledger
	grading  *service.Grading
}

func setup(t *testing.T) fixture {
	database := testutil.NewDB(t)
	cache := utils.NewCache(nil)
	ledger := service.NewLedger(database)
	return fixture{
		accounts: service.NewAccountStore(database, cache),
		catalog:  service.NewCatalog(database, cache),
		ledger:   ledger,
		grading:  service.NewGrading(database, ledger),
	}
}
