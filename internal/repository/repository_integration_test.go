package repository

import (
	"context"
	"testing"
	"time"

	"rpgserver/internal/model"
	"rpgserver/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_Integration(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	ctx := context.Background()

	accounts := NewAccountRepository(db)
	tokens := NewTokenRepository(db)
	characters := NewCharacterRepository(db)
	items := NewItemRepository(db)
	inventories := NewInventoryRepository(db)
	equipments := NewEquipmentRepository(db)

	account := &model.Account{LoginID: "repouser", Password: "hash", Role: model.RolePlayer}
	require.NoError(t, accounts.Create(ctx, nil, account))

	character := &model.Character{AccountID: account.ID}
	require.NoError(t, characters.Create(ctx, nil, character))
	require.NoError(t, characters.CreateInfo(ctx, nil, &model.CharacterInfo{
		CharacterID: character.ID, Nickname: "repo-hero", Health: 500, Power: 100, Money: 100,
	}))
	inventory := &model.Inventory{CharacterID: character.ID, Name: model.DefaultInventoryName, Size: 100}
	require.NoError(t, inventories.Create(ctx, nil, inventory))

	sword := &model.Item{Name: "repo-sword", Part: model.PartWeapon, Power: 10, Price: 50}
	require.NoError(t, items.Create(ctx, sword))

	t.Run("duplicate login id", func(t *testing.T) {
		err := accounts.Create(ctx, nil, &model.Account{LoginID: "repouser", Password: "x", Role: model.RolePlayer})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, accounts.UpdateRole(ctx, "repouser", model.RoleAdmin))
		got, err := accounts.GetByLoginID(ctx, "repouser")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, got.Role)
		assert.ErrorIs(t, accounts.UpdateRole(ctx, "nobody", model.RoleAdmin), ErrAccountNotFound)
	})

	t.Run("refresh tokens", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, tokens.Create(ctx, &model.RefreshToken{
			AccountID: account.ID, Token: "expired", ExpiresAt: now.Add(-time.Minute),
		}))
		require.NoError(t, tokens.Create(ctx, &model.RefreshToken{
			AccountID: account.ID, Token: "live", ExpiresAt: now.Add(time.Hour),
		}))

		got, err := tokens.GetUsableByAccountID(ctx, account.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "live", got.Token)

		_, err = tokens.GetUsable(ctx, "expired", account.ID, now)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		_, err = tokens.GetUsable(ctx, "live", account.ID+1, now)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		n, err := tokens.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("inventory quantity upsert", func(t *testing.T) {
		require.NoError(t, inventories.AddQuantity(ctx, nil, inventory.ID, sword.Code, sword.Name, 2))
		require.NoError(t, inventories.AddQuantity(ctx, nil, inventory.ID, sword.Code, sword.Name, 3))

		line, err := inventories.GetItem(ctx, nil, inventory.ID, sword.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(5), line.Quantity)

		assert.ErrorIs(t, inventories.RemoveQuantity(ctx, nil, inventory.ID, sword.Code, 6), ErrQuantityNotEnough)
		require.NoError(t, inventories.RemoveQuantity(ctx, nil, inventory.ID, sword.Code, 5))

		lines, err := inventories.ListItems(ctx, inventory.ID)
		require.NoError(t, err)
		assert.Empty(t, lines, "zero quantity lines are hidden")
	})

	t.Run("money never negative", func(t *testing.T) {
		assert.ErrorIs(t, characters.AddMoney(ctx, nil, character.ID, -101), ErrMoneyNotEnough)
		require.NoError(t, characters.AddMoney(ctx, nil, character.ID, -100))

		got, err := characters.GetByID(ctx, character.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Info.Money)
	})

	t.Run("one item per slot", func(t *testing.T) {
		require.NoError(t, equipments.Create(ctx, nil, &model.Equipment{
			CharacterID: character.ID, Part: model.PartWeapon, ItemCode: sword.Code, ItemName: sword.Name,
		}))
		err := equipments.Create(ctx, nil, &model.Equipment{
			CharacterID: character.ID, Part: model.PartWeapon, ItemCode: sword.Code, ItemName: sword.Name,
		})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("delete character cascade", func(t *testing.T) {
		require.NoError(t, equipments.DeleteByCharacterID(ctx, nil, character.ID))
		require.NoError(t, inventories.DeleteByCharacterID(ctx, nil, character.ID))
		require.NoError(t, characters.Delete(ctx, nil, character.ID))

		_, err := characters.GetByID(ctx, character.ID)
		assert.ErrorIs(t, err, ErrCharacterNotFound)
		_, err = inventories.GetByCharacterID(ctx, nil, character.ID)
		assert.ErrorIs(t, err, ErrInventoryNotFound)
	})
}
