package cart

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStorageLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"product_id", "name", "unit_price", "quantity", "image_ref"}).
		AddRow("a", "Apples", "12.50", 2, "a.png").
		AddRow("b", "Bread", "40", 1, "")
	mock.ExpectQuery(regexp.QuoteMeta(selectCartItemsSQL)).
		WithArgs("user-1").
		WillReturnRows(rows)

	items, err := NewPostgresStorage(db).Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ProductID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].UnitPrice))
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "b", items[1].ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageLoad_NoCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectCartItemsSQL)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "unit_price", "quantity", "image_ref"}))

	items, err := NewPostgresStorage(db).Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageSave_ReplacesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	items := []LineItem{
		{ProductID: "a", Name: "Apples", UnitPrice: decimal.NewFromInt(50), Quantity: 2, ImageRef: "a.png"},
		{ProductID: "b", Name: "Bread", UnitPrice: decimal.NewFromInt(30), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(upsertCartSQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec(regexp.QuoteMeta(deleteCartItemsSQL)).
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertCartItemSQL))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "cart-1", 0, "a", "Apples", sqlmock.AnyArg(), 2, "a.png").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "cart-1", 1, "b", "Bread", sqlmock.AnyArg(), 1, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStorage(db).Save(context.Background(), "user-1", items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageSave_EmptyCartSkipsInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(upsertCartSQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec(regexp.QuoteMeta(deleteCartItemsSQL)).
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStorage(db).Save(context.Background(), "user-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageSave_ItemInsertErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(upsertCartSQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cart-1"))
	mock.ExpectExec(regexp.QuoteMeta(deleteCartItemsSQL)).
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(insertCartItemSQL)).
		ExpectExec().
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err = NewPostgresStorage(db).Save(context.Background(), "user-1", []LineItem{
		{ProductID: "a", Name: "Apples", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
