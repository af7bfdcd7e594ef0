package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patric-chuzhbe/ainotes/internal/user"
)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		assert.NoError(t, err, "The memorystorage.New() should not return error")

		_, err = theStorage.CreateUser(context.Background(), &user.User{
			ID:    "10000000-0000-0000-0000-000000000001",
			Email: "a@x.com",
		})
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")

		usr, found, err := theStorage.FindUserByEmail(context.Background(), "a@x.com")
		assert.NoError(t, err, "The `theStorage.FindUserByEmail()` should not return error")
		assert.True(t, found)
		assert.Equal(t, "10000000-0000-0000-0000-000000000001", usr.ID)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}
