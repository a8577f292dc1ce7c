package actor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/logging"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader(logging.NoOpLogger{})

	t.Run("canonical columns", func(t *testing.T) {
		path := writeCSV(t, "Employee Name,Employee Phone,Department\nNikhil,+91 9705 184 409,Engineering\nAsha,918888777666,Sales\n")
		actors := loader.Load(path, 10)

		require.Len(t, actors, 2)
		assert.Equal(t, "Nikhil", actors[0].Name)
		// separators are stripped during normalization
		assert.Equal(t, "919705184409", actors[0].Phone)
		assert.Equal(t, "Engineering", actors[0].Raw["Department"])
		assert.Equal(t, "Asha", actors[1].Name)
	})

	t.Run("aliased columns", func(t *testing.T) {
		path := writeCSV(t, "name,mobile\nRavi,917777666555\n")
		actors := loader.Load(path, 5)
		require.Len(t, actors, 1)
		assert.Equal(t, "Ravi", actors[0].Name)
		assert.Equal(t, "917777666555", actors[0].Phone)
	})

	t.Run("truncates to count", func(t *testing.T) {
		path := writeCSV(t, "Phone\n911111111111\n922222222222\n933333333333\n")
		actors := loader.Load(path, 2)
		assert.Len(t, actors, 2)
	})

	t.Run("generated names", func(t *testing.T) {
		path := writeCSV(t, "Phone\n911111111111\n")
		actors := loader.Load(path, 1)
		require.Len(t, actors, 1)
		assert.Equal(t, "Employee 1", actors[0].Name)
	})

	t.Run("invalid phone rows skipped", func(t *testing.T) {
		path := writeCSV(t, "Name,Phone\nShort,12345\nGood,919705184409\n")
		actors := loader.Load(path, 10)
		require.Len(t, actors, 1)
		assert.Equal(t, "Good", actors[0].Name)
	})
}

func TestLoader_Defaults(t *testing.T) {
	loader := NewLoader(logging.NoOpLogger{})

	t.Run("missing file", func(t *testing.T) {
		actors := loader.Load("/nonexistent/employees.csv", 3)
		require.Len(t, actors, 1)
		assert.Equal(t, "919705184409", actors[0].Phone)
		assert.Equal(t, "Nikhil", actors[0].Name)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "Name,Phone\n")
		assert.Equal(t, DefaultActors(), loader.Load(path, 2))
	})

	t.Run("no phone column", func(t *testing.T) {
		path := writeCSV(t, "Name,Department\nNikhil,Engineering\n")
		assert.Equal(t, DefaultActors(), loader.Load(path, 2))
	})

	t.Run("all rows invalid", func(t *testing.T) {
		path := writeCSV(t, "Phone\nabc\n123\n")
		assert.Equal(t, DefaultActors(), loader.Load(path, 2))
	})
}
