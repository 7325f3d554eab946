package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/magicorm/runtime"
)

type namedDriver struct {
	Driver
	name string
}

func (d namedDriver) Name() string { return d.name }

func factoryNamed(name string) Factory {
	return func(Options) (Driver, error) { return namedDriver{name: name}, nil }
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"mysql", []string{"magicorm/driver-mysql", "magicorm-driver-mysql", "mysql"}},
		{"./local", []string{"./local"}},
		{"/abs/driver", []string{"/abs/driver"}},
		{"@scope/driver", []string{"@scope/driver"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Candidates(tt.name))
		})
	}
}

func TestResolveOrder(t *testing.T) {
	require.NoError(t, Register("resolve-order", factoryNamed("exact")))
	require.NoError(t, Register("magicorm-driver-resolve-order", factoryNamed("dashed")))

	_, id, err := Resolve("resolve-order")
	require.NoError(t, err)
	assert.Equal(t, "magicorm-driver-resolve-order", id)

	require.NoError(t, Register("magicorm/driver-resolve-order", factoryNamed("namespaced")))
	d, err := Create("resolve-order", Options{})
	require.NoError(t, err)
	assert.Equal(t, "namespaced", d.Name())

	_, id, err = Resolve("magicorm-driver-resolve-order")
	require.NoError(t, err)
	assert.Equal(t, "magicorm-driver-resolve-order", id)
}

func TestResolveDirectReference(t *testing.T) {
	require.NoError(t, Register("magicorm/driver-./direct", factoryNamed("wrong")))
	_, _, err := Resolve("./direct")
	assert.ErrorIs(t, err, runtime.ErrDriverNotFound)

	require.NoError(t, Register("./direct", factoryNamed("direct")))
	_, id, err := Resolve("./direct")
	require.NoError(t, err)
	assert.Equal(t, "./direct", id)
}

func TestResolveErrors(t *testing.T) {
	_, _, err := Resolve(42)
	assert.ErrorIs(t, err, runtime.ErrInvalidDriverName)
	var de *runtime.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 42, de.Name)

	_, _, err = Resolve("no-such-backend")
	assert.ErrorIs(t, err, runtime.ErrDriverNotFound)

	_, err = Create(nil, Options{})
	assert.ErrorIs(t, err, runtime.ErrInvalidDriverName)
}

func TestRegister(t *testing.T) {
	assert.Error(t, Register("", factoryNamed("x")))
	assert.Error(t, Register("nil-factory", nil))

	require.NoError(t, Register("dup", factoryNamed("x")))
	assert.Error(t, Register("dup", factoryNamed("y")))
	assert.Contains(t, Drivers(), "dup")
}

func TestCreateFactoryError(t *testing.T) {
	boom := errors.New("bad options")
	require.NoError(t, Register("failing", func(Options) (Driver, error) { return nil, boom }))

	_, err := Create("failing", Options{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "create driver failing")
}
