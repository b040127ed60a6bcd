// Package bridge is the application-facing façade: it binds a host,
// bridge uuid, and local uuid to the engine's transport/session/rmi/pdo
// layers and exposes the verbs an application actually calls (spec.md
// §4.8 in SPEC_FULL.md, component 8 in the package overview).
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/pdo"
	"github.com/airnode/ventbridge/pkg/sensors"
	"github.com/airnode/ventbridge/pkg/session"
	"github.com/airnode/ventbridge/pkg/wire"
)

// Ventilation unit subunit identifiers, addressed through RMI node
// 0x01 (the ventilation unit itself). Fan speed, bypass, boost and away
// go through fixed subunit commands instead (see wire.EncodeSetFanSpeed
// and friends) and no longer need a subunit id here.
const (
	SubunitFan         uint8 = 0x01
	SubunitTemperature uint8 = 0x03
)

// Speed is the four-position fan speed selector.
type Speed uint8

const (
	SpeedAway Speed = iota
	SpeedLow
	SpeedMedium
	SpeedHigh
)

// Mode selects whether the unit follows its own schedule or a manual
// speed setting.
type Mode uint8

const (
	ModeAuto Mode = iota
	ModeManual
)

// BypassMode controls the heat-recovery bypass valve.
type BypassMode uint8

const (
	BypassAuto BypassMode = iota
	BypassOn
	BypassOff
)

// TemperatureProfile selects the comfort curve used by ComfoCool/preheat
// logic.
type TemperatureProfile uint8

const (
	ProfileWarm TemperatureProfile = iota
	ProfileNormal
	ProfileCool
)

// Config configures a Bridge. Addr is "host:port" (spec.md §6: TCP port
// 56747 by default).
type Config struct {
	Addr          string
	LocalUUID     ventbridge.UUID
	BridgeUUID    ventbridge.UUID
	AutoReconnect bool
	Catalog       *sensors.Catalog
	Logger        *slog.Logger
}

// Bridge is a thin façade over pkg/session: Connect/Disconnect manage
// the connection lifecycle; RMI/GetProperty/SetProperty/Subscribe
// forward to the session's rmi/pdo clients; the Set* convenience verbs
// compose RMI calls the way an application would.
type Bridge struct {
	cfg  Config
	sess *session.Session
}

// New builds a Bridge in the disconnected state.
func New(cfg Config, onStateChange session.StateChangeHandler) *Bridge {
	b := &Bridge{cfg: cfg}
	b.sess = session.New(session.Config{
		Addr:          cfg.Addr,
		LocalUUID:     cfg.LocalUUID,
		BridgeUUID:    cfg.BridgeUUID,
		AutoReconnect: cfg.AutoReconnect,
		Catalog:       cfg.Catalog,
		Logger:        cfg.Logger,
	}, onStateChange)
	return b
}

// Connect establishes the TCP connection and session handshake.
func (b *Bridge) Connect(ctx context.Context) error {
	return b.sess.Connect(ctx)
}

// Disconnect closes the session gracefully.
func (b *Bridge) Disconnect(ctx context.Context) error {
	return b.sess.Disconnect(ctx)
}

// State reports the underlying session's lifecycle state.
func (b *Bridge) State() session.State {
	return b.sess.State()
}

// Catalog returns the sensor catalog this Bridge was configured with
// (sensors.Default if none was given), for commands that enumerate
// known sensors rather than subscribe to a specific one.
func (b *Bridge) Catalog() *sensors.Catalog {
	if b.cfg.Catalog == nil {
		return sensors.Default
	}
	return b.cfg.Catalog
}

// RegisterApp registers this application with the bridge.
func (b *Bridge) RegisterApp(ctx context.Context, deviceName, pin string) error {
	return b.sess.RegisterApp(ctx, deviceName, pin)
}

// DeregisterApp removes a previously registered application by uuid.
func (b *Bridge) DeregisterApp(ctx context.Context, target ventbridge.UUID) error {
	return b.sess.DeregisterApp(ctx, target)
}

// ListRegisteredApps lists every application currently registered.
func (b *Bridge) ListRegisteredApps(ctx context.Context) ([]wire.RegisteredApp, error) {
	return b.sess.ListRegisteredApps(ctx)
}

// GetProperty is a thin forward to the session's RMI client.
func (b *Bridge) GetProperty(ctx context.Context, unit, subunit uint8, typeTag wire.TypeTag, prop uint8) (any, error) {
	client := b.sess.RMI()
	if client == nil {
		return nil, ventbridge.ErrTransportLost
	}
	return client.GetProperty(ctx, unit, subunit, typeTag, prop)
}

// SetProperty is a thin forward to the session's RMI client.
func (b *Bridge) SetProperty(ctx context.Context, unit, subunit, prop uint8, typeTag wire.TypeTag, value any) error {
	client := b.sess.RMI()
	if client == nil {
		return ventbridge.ErrTransportLost
	}
	return client.SetProperty(ctx, unit, subunit, prop, typeTag, value)
}

// SendCommand issues a raw subunit command through the session's RMI
// client, for callers that need a command this façade doesn't already
// wrap.
func (b *Bridge) SendCommand(ctx context.Context, unit, subunit, opcode uint8, args []byte) ([]byte, error) {
	client := b.sess.RMI()
	if client == nil {
		return nil, ventbridge.ErrTransportLost
	}
	return client.SendCommand(ctx, unit, subunit, opcode, args)
}

// Subscribe installs a PDO subscription through the session's registry.
func (b *Bridge) Subscribe(ctx context.Context, pdid uint32, typeTag wire.TypeTag, consumer pdo.Consumer, dedup bool) error {
	reg := b.sess.PDO()
	if reg == nil {
		return ventbridge.ErrTransportLost
	}
	return reg.Subscribe(ctx, pdid, typeTag, consumer, dedup)
}

// Unsubscribe removes a PDO subscription.
func (b *Bridge) Unsubscribe(ctx context.Context, pdid uint32) error {
	reg := b.sess.PDO()
	if reg == nil {
		return ventbridge.ErrTransportLost
	}
	return reg.Unsubscribe(ctx, pdid)
}

// Property ids for the convenience verbs that still go through
// get/set-property rather than a fixed subunit command.
const (
	propMode               uint8 = 0x02
	propComfoCoolMode      uint8 = 0x05
	propTemperatureProfile uint8 = 0x01
)

// sendRawCommand forwards an already-assembled subunit command payload
// to the session's RMI client, discarding the reply body: these
// commands are fire-and-confirm (spec.md §8 scenario 1 only checks
// error=0).
func (b *Bridge) sendRawCommand(ctx context.Context, payload []byte) error {
	client := b.sess.RMI()
	if client == nil {
		return ventbridge.ErrTransportLost
	}
	_, err := client.SendRawCommand(ctx, payload)
	return err
}

// SetSpeed sets the fan speed to one of away/low/medium/high, via the
// unit's fixed "set fan speed" subunit command (spec.md §8 scenario 1).
func (b *Bridge) SetSpeed(ctx context.Context, speed Speed) error {
	return b.sendRawCommand(ctx, wire.EncodeSetFanSpeed(uint8(speed)))
}

// SetMode switches the unit between automatic schedule and manual
// speed control.
func (b *Bridge) SetMode(ctx context.Context, mode Mode) error {
	return b.SetProperty(ctx, wire.RMINodeUnit, SubunitFan, propMode, wire.TypeUint8, uint8(mode))
}

// SetBypass sets the heat-recovery bypass valve mode, with an optional
// timeout in seconds after which the bridge reverts to automatic
// control (0 means "until changed again"), via the unit's fixed
// "set bypass" subunit command.
func (b *Bridge) SetBypass(ctx context.Context, mode BypassMode, timeoutSeconds uint32) error {
	if err := b.sendRawCommand(ctx, wire.EncodeSetBypass(uint8(mode), timeoutSeconds)); err != nil {
		return fmt.Errorf("set bypass: %w", err)
	}
	return nil
}

// SetBoost turns temporary maximum-speed boost on or off, for
// timeoutSeconds when turning on (ignored when turning off), via the
// unit's fixed "set boost" subunit command.
func (b *Bridge) SetBoost(ctx context.Context, on bool, timeoutSeconds uint32) error {
	if err := b.sendRawCommand(ctx, wire.EncodeSetBoost(on, timeoutSeconds)); err != nil {
		return fmt.Errorf("set boost: %w", err)
	}
	return nil
}

// SetAway turns away mode on or off, for timeoutSeconds when turning
// on, via the unit's fixed "set away" subunit command.
func (b *Bridge) SetAway(ctx context.Context, on bool, timeoutSeconds uint32) error {
	if err := b.sendRawCommand(ctx, wire.EncodeSetAway(on, timeoutSeconds)); err != nil {
		return fmt.Errorf("set away: %w", err)
	}
	return nil
}

// SetComfoCool switches the optional ComfoCool add-on between automatic
// and off.
func (b *Bridge) SetComfoCool(ctx context.Context, auto bool) error {
	return b.SetProperty(ctx, wire.RMINodeUnit, SubunitTemperature, propComfoCoolMode, wire.TypeBool, auto)
}

// SetTemperatureProfile selects the comfort curve (warm/normal/cool).
func (b *Bridge) SetTemperatureProfile(ctx context.Context, profile TemperatureProfile) error {
	return b.SetProperty(ctx, wire.RMINodeUnit, SubunitTemperature, propTemperatureProfile, wire.TypeUint8, uint8(profile))
}
