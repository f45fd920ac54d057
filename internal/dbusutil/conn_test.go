package dbusutil_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/internal/dbusutil"
	"github.com/pozitronik/wayle/pkg/service"
)

func TestConnect_SurfacesBusTransportErrorWithoutSessionBus(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		t.Skip("a real session bus is reachable in this environment")
	}

	_, err := dbusutil.Connect("test")
	require.Error(t, err)

	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, service.KindBusTransport, svcErr.Kind)
}

func TestConn_CloseIsSafeOnZeroValue(t *testing.T) {
	c := &dbusutil.Conn{}
	require.NoError(t, c.Close())
}
