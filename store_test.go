package osformula

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore()

	_, err := s.Get("config")
	assert.Error(t, err)

	s.Set("config", []byte("cluster.name: opensearch\n"))
	v, err := s.Get("config")
	require.NoError(t, err)
	assert.Equal(t, []byte("cluster.name: opensearch\n"), v)
}

func TestLoad(t *testing.T) {
	s := NewStore()
	s.Set("home", "/usr/share/opensearch")

	home, err := Load[string](s, "home")
	require.NoError(t, err)
	assert.Equal(t, "/usr/share/opensearch", home)

	_, err = Load[int](s, "home")
	assert.ErrorContains(t, err, "holds string")

	_, err = Load[string](s, "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("key-%d", i), i)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		v, err := Load[int](s, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("debian")
	require.NoError(t, err)
	assert.Equal(t, Debian, p)

	p, err = ParsePlatform(" CentOS-7-x86_64 ")
	require.NoError(t, err)
	assert.Equal(t, RedHat, p)

	_, err = ParsePlatform("windows")
	assert.Error(t, err)
}

func TestParsePlatforms(t *testing.T) {
	ps, err := ParsePlatforms(nil)
	require.NoError(t, err)
	assert.Equal(t, SupportedPlatforms(), ps)

	ps, err = ParsePlatforms([]string{"redhat"})
	require.NoError(t, err)
	assert.Equal(t, []Platform{RedHat}, ps)

	_, err = ParsePlatforms([]string{"redhat", "arch"})
	assert.Error(t, err)
}
