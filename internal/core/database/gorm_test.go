package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/shop?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/shop?parseTime=true",
		},
		{
			name: "url form",
			in:   "mysql://root:pw@db:3306/shop",
			want: "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc with overrides",
			in:   "jdbc:mysql://db:3306/shop?useSSL=false&useUnicode=true&characterEncoding=latin1",
			user: "app",
			pass: "secret",
			want: "app:secret@tcp(db:3306)/shop?charset=latin1&parseTime=true&tls=false",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:****@db:5432/shop", MaskDSN("postgres://app:secret@db:5432/shop"))
	assert.Equal(t, "root:****@tcp(db:3306)/shop", MaskDSN("root:pw@tcp(db:3306)/shop"))
	assert.Equal(t, "file:shop.db", MaskDSN("file:shop.db"))
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:gormtest?mode=memory&cache=shared", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("sweets"))
	assert.True(t, db.Migrator().HasTable("users"))
}
