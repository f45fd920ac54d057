package notification

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/pozitronik/wayle/internal/dbusutil"
	"github.com/pozitronik/wayle/pkg/service"
)

const (
	busName       = "org.freedesktop.Notifications"
	objectPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	interfaceName = "org.freedesktop.Notifications"
)

// ServerInfo is the static reply to GetServerInformation.
var ServerInfo = struct {
	Name, Vendor, Version, SpecVersion string
}{Name: "wayle", Vendor: "wayle", Version: "1.0", SpecVersion: "1.2"}

// Daemon exports the org.freedesktop.Notifications interface on the
// session bus and forwards D-Bus calls into the Monitor.
type Daemon struct {
	conn    *dbusutil.Conn
	builder *Builder
	monitor *Monitor
}

// NewDaemon requests the well-known bus name and exports the
// Notifications object. Returns a *service.Error with
// KindServiceInitialization if the name is already owned by another
// daemon.
func NewDaemon(conn *dbusutil.Conn, builder *Builder, monitor *Monitor) (*Daemon, error) {
	acquired, err := conn.RequestName(busName)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, service.New("notification", service.KindServiceInitialization, "RequestName",
			nil)
	}

	d := &Daemon{conn: conn, builder: builder, monitor: monitor}
	if err := conn.Raw().Export(d, objectPath, interfaceName); err != nil {
		return nil, service.New("notification", service.KindBusTransport, "Export", err)
	}
	if err := conn.Raw().Export(introspect.Introspectable(introspectXML), objectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, service.New("notification", service.KindBusTransport, "Export introspection", err)
	}
	return d, nil
}

// RunSignals forwards Monitor's Closed events as NotificationClosed
// signals until ctx is done.
func (d *Daemon) RunSignals(ctx context.Context) {
	closed, stop := d.monitor.ClosedEvents()
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-closed:
			_ = d.conn.Raw().Emit(objectPath, interfaceName+".NotificationClosed", ev.ID, uint32(ev.Reason))
		}
	}
}

// RunActionSignals forwards Monitor's ActionInvoked events as
// ActionInvoked signals until ctx is done.
func (d *Daemon) RunActionSignals(ctx context.Context) {
	actions, stop := d.monitor.ActionEvents()
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-actions:
			_ = d.conn.Raw().Emit(objectPath, interfaceName+".ActionInvoked", ev.ID, ev.Key)
		}
	}
}

// InvokeAction is the entry point the shell's own popup/list UI calls
// when the user activates one of a notification's actions. There is no
// client-facing D-Bus method for this in the FDO spec — actions are
// invoked by whatever renders the notification, not by the sending
// application — so this is a plain Go method, not exported over the
// bus.
func (d *Daemon) InvokeAction(id uint32, actionKey string) {
	d.monitor.InvokeAction(id, actionKey)
}

// Notify implements the FDO Notify method.
func (d *Daemon) Notify(appName string, replacesID uint32, icon, summary, body string,
	actions []string, hints map[string]dbus.Variant, expireTimeout int32) (uint32, *dbus.Error) {

	plainHints := make(map[string]any, len(hints))
	for k, v := range hints {
		plainHints[k] = v.Value()
	}

	req := NotifyRequest{
		AppName: appName, ReplacesID: replacesID, Icon: icon, Summary: summary, Body: body,
		Actions: actions, Hints: plainHints, ExpireTimeout: expireTimeout,
	}
	n := d.builder.Build(req)
	d.monitor.SubmitAdd(n)
	return n.ID, nil
}

// CloseNotification implements the FDO CloseNotification method.
func (d *Daemon) CloseNotification(id uint32) *dbus.Error {
	d.monitor.SubmitRemove(id, ReasonClosedByCall)
	return nil
}

// GetCapabilities implements the FDO GetCapabilities method.
func (d *Daemon) GetCapabilities() ([]string, *dbus.Error) {
	return []string{"body", "body-markup", "actions", "icon-static", "persistence"}, nil
}

// GetServerInformation implements the FDO GetServerInformation method.
func (d *Daemon) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return ServerInfo.Name, ServerInfo.Vendor, ServerInfo.Version, ServerInfo.SpecVersion, nil
}

const introspectXML = `
<node>
	<interface name="org.freedesktop.Notifications">
		<method name="Notify">
			<arg direction="in" type="s"/>
			<arg direction="in" type="u"/>
			<arg direction="in" type="s"/>
			<arg direction="in" type="s"/>
			<arg direction="in" type="s"/>
			<arg direction="in" type="as"/>
			<arg direction="in" type="a{sv}"/>
			<arg direction="in" type="i"/>
			<arg direction="out" type="u"/>
		</method>
		<method name="CloseNotification">
			<arg direction="in" type="u"/>
		</method>
		<method name="GetCapabilities">
			<arg direction="out" type="as"/>
		</method>
		<method name="GetServerInformation">
			<arg direction="out" type="s"/>
			<arg direction="out" type="s"/>
			<arg direction="out" type="s"/>
			<arg direction="out" type="s"/>
		</method>
		<signal name="NotificationClosed">
			<arg type="u"/>
			<arg type="u"/>
		</signal>
		<signal name="ActionInvoked">
			<arg type="u"/>
			<arg type="s"/>
		</signal>
	</interface>
</node>`
