package database

import (
	"path/filepath"
	"testing"

	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteFile(t *testing.T) {
	db, err := Open("", filepath.Join(t.TempDir(), "relief.db"))
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, db.Migrator().HasTable(&models.Emergency{}))
	assert.True(t, db.Migrator().HasTable(&models.Account{}))
}

func TestOpenInMemory_IsolatedPerCall(t *testing.T) {
	a, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(a)
	b, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(b)

	require.NoError(t, a.Create(&models.Emergency{ID: "e1", Title: "Fire", Description: "d", Reporter: "u1"}).Error)

	var count int64
	require.NoError(t, b.Model(&models.Emergency{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmergencyHooks_NormaliseOnReadAndWrite(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(db)

	e := models.Emergency{ID: "e1", Title: "Flood", Description: "d", Reporter: "u1", Status: models.StatusAccepted}
	require.NoError(t, db.Create(&e).Error)
	assert.Equal(t, models.StatusPending, e.Status)

	var got models.Emergency
	require.NoError(t, db.First(&got, "id = ?", "e1").Error)
	assert.Equal(t, []string{}, got.Volunteers)
	assert.Equal(t, models.StatusPending, got.Status)
}
