// Package session drives the connection lifecycle state machine:
// Disconnected -> Connecting -> Starting -> Active -> Closing, with
// keepalive, stall detection, and backoff-governed reconnection that
// preserves PDO subscriptions (spec.md §4.4).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/dispatch"
	"github.com/airnode/ventbridge/pkg/pdo"
	"github.com/airnode/ventbridge/pkg/rmi"
	"github.com/airnode/ventbridge/pkg/sensors"
	"github.com/airnode/ventbridge/pkg/transport"
	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/cenkalti/backoff/v4"
)

// State is one node in the connection lifecycle state machine (spec.md
// §3, §4.4).
type State int

const (
	Disconnected State = iota
	Connecting
	Starting
	Active
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Starting:
		return "Starting"
	case Active:
		return "Active"
	case Closing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// Config configures a Session. Addr, LocalUUID and BridgeUUID are
// required; everything else has a spec-defined default.
type Config struct {
	Addr              string
	LocalUUID         ventbridge.UUID
	BridgeUUID        ventbridge.UUID
	KeepaliveInterval time.Duration // default transport.DefaultKeepaliveInterval
	AutoReconnect     bool
	Catalog           *sensors.Catalog // default sensors.Default
	Logger            *slog.Logger
}

// StateChangeHandler is called, off any internal lock, whenever the
// session transitions between states.
type StateChangeHandler func(from, to State, reason error)

// Session owns one bridge connection's full lifecycle.
type Session struct {
	cfg    Config
	logger *slog.Logger

	onStateChange StateChangeHandler

	mu         sync.RWMutex
	state      State
	conn       *transport.Conn
	disp       *dispatch.Dispatcher
	pdoReg     *pdo.Registry
	rmiClient  *rmi.Client
	keepaliveC context.CancelFunc

	backoffPolicy backoff.BackOff
	reconnecting  bool
	closedByUser  bool
}

// New builds a Session in the Disconnected state. Call Connect to
// establish the connection.
func New(cfg Config, onStateChange StateChangeHandler) *Session {
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = transport.DefaultKeepaliveInterval
	}
	if cfg.Catalog == nil {
		cfg.Catalog = sensors.Default
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:           cfg,
		logger:        logger,
		state:         Disconnected,
		onStateChange: onStateChange,
		backoffPolicy: newBackoff(),
	}
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // unbounded retries while auto-reconnect is enabled
	b.RandomizationFactor = 0
	b.Reset() // restart from the 1s InitialInterval set above
	return b
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RMI returns the typed RMI client bound to this session. Valid only
// while State() == Active.
func (s *Session) RMI() *rmi.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rmiClient
}

// PDO returns the PDO subscription registry bound to this session.
// Valid only while State() == Active.
func (s *Session) PDO() *pdo.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pdoReg
}

// Connect dials the bridge and runs the Connecting -> Starting -> Active
// handshake once. If it later drops and AutoReconnect is set, the
// session re-enters Connecting on its own (spec.md §4.4).
func (s *Session) Connect(ctx context.Context) error {
	s.setState(Connecting, nil)
	return s.connectOnce(ctx)
}

func (s *Session) connectOnce(ctx context.Context) error {
	conn, err := transport.Dial(ctx, s.cfg.Addr, s.logger)
	if err != nil {
		s.setState(Disconnected, err)
		return fmt.Errorf("%w: %v", ventbridge.ErrTransportLost, err)
	}

	disp := dispatch.New(conn, s.cfg.LocalUUID, s.onNotification, s.logger)

	s.mu.Lock()
	reg := s.pdoReg
	s.mu.Unlock()
	if reg == nil {
		reg = pdo.New(disp, s.cfg.BridgeUUID, s.cfg.Catalog, s.logger)
	} else {
		// Reconnect: keep the existing subscription set and just point
		// it at the new connection's dispatcher (spec.md §4.4, §8
		// scenario 6).
		reg.Rebind(disp)
	}

	s.mu.Lock()
	s.conn = conn
	s.disp = disp
	s.pdoReg = reg
	s.rmiClient = rmi.New(disp, s.cfg.BridgeUUID)
	s.mu.Unlock()

	conn.Start(disp.HandleFrame, s.onTransportClosed)

	s.setState(Starting, nil)
	startPayload := wire.EncodeStartSessionRequest()
	env, err := disp.Request(ctx, s.cfg.BridgeUUID, ventbridge.OpStartSessionRequest, startPayload)
	if err != nil {
		s.teardown(err)
		return err
	}
	status, err := wire.DecodeStartSessionConfirm(env.Payload)
	if err != nil {
		s.teardown(err)
		return err
	}
	if status == wire.StartSessionNotRegistered {
		s.teardown(ventbridge.ErrNotRegistered)
		return ventbridge.ErrNotRegistered
	}

	if reg.Count() > 0 {
		if err := reg.Resubscribe(ctx); err != nil {
			s.logger.Warn("resubscribe after connect failed", "error", err)
		}
	}

	s.setState(Active, nil)
	s.startKeepalive()
	return nil
}

func (s *Session) startKeepalive() {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.keepaliveC = cancel
	conn := s.conn
	disp := s.disp
	s.mu.Unlock()

	k := transport.NewKeepalive(conn, s.cfg.KeepaliveInterval, s.logger,
		func() error {
			return disp.Notify(s.cfg.BridgeUUID, ventbridge.OpKeepAlive, nil)
		},
		func(err error) {
			s.teardown(err)
		},
	)
	go k.Run(ctx)
}

// onNotification routes server-initiated frames: PDO notifications go
// to the registry, CloseSessionNotification fails every pending request
// and transitions to Disconnected (spec.md §4.4).
func (s *Session) onNotification(env wire.Envelope) {
	switch env.Tag {
	case ventbridge.OpCnRpdoNotification:
		s.mu.RLock()
		reg := s.pdoReg
		s.mu.RUnlock()
		if reg != nil {
			reg.HandleNotification(env)
		}
	case ventbridge.OpCloseSessionNotification:
		s.teardown(ventbridge.ErrSessionClosed)
	default:
		s.logger.Debug("unhandled notification", "tag", env.Tag)
	}
}

func (s *Session) onTransportClosed(reason error) {
	if reason == nil {
		reason = ventbridge.ErrTransportLost
	}
	s.teardown(reason)
}

// teardown fails all pending work and transitions to Disconnected,
// starting a reconnect loop if configured.
func (s *Session) teardown(reason error) {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	if s.keepaliveC != nil {
		s.keepaliveC()
		s.keepaliveC = nil
	}
	disp := s.disp
	conn := s.conn
	closedByUser := s.closedByUser
	s.mu.Unlock()

	if disp != nil {
		disp.Close(reason)
	}
	if conn != nil {
		_ = conn.Close()
	}

	s.setState(Disconnected, reason)

	if s.cfg.AutoReconnect && !closedByUser && !errors.Is(reason, ventbridge.ErrSessionClosed) {
		go s.reconnectLoop()
	}
}

func (s *Session) reconnectLoop() {
	s.mu.Lock()
	if s.reconnecting {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reconnecting = false
		s.mu.Unlock()
	}()

	policy := newBackoff()
	for {
		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		time.Sleep(wait)

		s.mu.RLock()
		closedByUser := s.closedByUser
		s.mu.RUnlock()
		if closedByUser {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := s.Connect(ctx)
		cancel()
		if err == nil {
			return
		}
		s.logger.Warn("reconnect attempt failed", "error", err)
	}
}

// Disconnect sends CloseSessionRequest and tears the connection down
// without triggering a reconnect (spec.md §4.4).
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.closedByUser = true
	disp := s.disp
	s.mu.Unlock()

	s.setState(Closing, nil)
	if disp != nil {
		_ = disp.Notify(s.cfg.BridgeUUID, ventbridge.OpCloseSessionRequest, wire.EncodeCloseSessionRequest())
	}
	s.teardown(ventbridge.ErrSessionClosed)
	return nil
}

func (s *Session) setState(to State, reason error) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	if from == to {
		return
	}
	s.logger.Info("session state transition", "from", from, "to", to)
	if s.onStateChange != nil {
		s.onStateChange(from, to, reason)
	}
}

// RegisterApp performs the one-shot registration handshake. Both
// Confirm(ok) and Confirm(already-registered) are treated as success
// (spec.md §4.4).
func (s *Session) RegisterApp(ctx context.Context, deviceName, pin string) error {
	disp, err := s.requireDispatcher()
	if err != nil {
		return err
	}
	payload := wire.EncodeRegisterAppRequest(s.cfg.LocalUUID, deviceName, pin)
	env, err := disp.Request(ctx, s.cfg.BridgeUUID, ventbridge.OpRegisterAppRequest, payload)
	if err != nil {
		return err
	}
	status, err := wire.DecodeRegisterAppConfirm(env.Payload)
	if err != nil {
		return err
	}
	if status != wire.RegisterAppOK && status != wire.RegisterAppAlreadyRegistered {
		return fmt.Errorf("register app: unexpected confirm status %d", status)
	}
	return nil
}

// DeregisterApp removes a recorded app by exact uuid match.
func (s *Session) DeregisterApp(ctx context.Context, target ventbridge.UUID) error {
	disp, err := s.requireDispatcher()
	if err != nil {
		return err
	}
	payload := wire.EncodeDeregisterAppRequest(target)
	_, err = disp.Request(ctx, s.cfg.BridgeUUID, ventbridge.OpDeregisterAppRequest, payload)
	return err
}

// ListRegisteredApps returns every app currently registered with the
// bridge.
func (s *Session) ListRegisteredApps(ctx context.Context) ([]wire.RegisteredApp, error) {
	disp, err := s.requireDispatcher()
	if err != nil {
		return nil, err
	}
	env, err := disp.Request(ctx, s.cfg.BridgeUUID, ventbridge.OpListRegisteredAppsRequest, wire.EncodeListRegisteredAppsRequest())
	if err != nil {
		return nil, err
	}
	return wire.DecodeListRegisteredAppsConfirm(env.Payload)
}

func (s *Session) requireDispatcher() (*dispatch.Dispatcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disp == nil {
		return nil, ventbridge.ErrTransportLost
	}
	return s.disp, nil
}
