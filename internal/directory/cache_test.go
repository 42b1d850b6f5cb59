package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
)

func seeded() *directory.Cache {
	cache := directory.NewCache()
	cache.Replace([]domain.Office{
		domain.NewOffice("off_1", "Central Hub NY"),
		domain.NewOffice("off_2", "Boston Branch"),
	})
	return cache
}

func TestResolveOfficeName(t *testing.T) {
	cache := seeded()

	assert.Equal(t, "Central Hub NY", cache.ResolveOfficeName("off_1"))
	assert.Equal(t, "Boston Branch", cache.ResolveOfficeName("off_2"))
	assert.Equal(t, directory.UnknownOffice, cache.ResolveOfficeName("off_404"))
	assert.Equal(t, directory.UnknownOffice, cache.ResolveOfficeName(""))
}

func TestLookup(t *testing.T) {
	cache := seeded()

	office, ok := cache.Lookup("off_1")
	require.True(t, ok)
	assert.Equal(t, "Central Hub NY", office.DisplayName)

	_, ok = cache.Lookup("off_404")
	assert.False(t, ok)
}

func TestReplaceIsWholesale(t *testing.T) {
	cache := seeded()

	cache.Replace([]domain.Office{domain.NewOffice("off_3", "Philly Station")})

	assert.Equal(t, directory.UnknownOffice, cache.ResolveOfficeName("off_1"))
	assert.Equal(t, "Philly Station", cache.ResolveOfficeName("off_3"))
	assert.Len(t, cache.Offices(), 1)

	cache.Replace(nil)
	assert.Empty(t, cache.Offices())
}

func TestNewOfficeShortCode(t *testing.T) {
	office := domain.NewOffice("off_1", "Central Hub NY")
	assert.Equal(t, "off_1", office.ID)
	assert.Equal(t, "OFF", office.ShortCode)
}
