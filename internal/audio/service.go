package audio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jfreymuth/pulse/proto"

	wlog "github.com/pozitronik/wayle/internal/log"
	"github.com/pozitronik/wayle/pkg/reactive"
	"github.com/pozitronik/wayle/pkg/service"
)

// healthCheckInterval bounds how long a dead PulseAudio connection can
// go undetected when no subscription event happens to reveal it first.
const healthCheckInterval = 5 * time.Second

// Snapshot is the bulk result of Service.Get: one full read of every
// device/stream list and default binding, taken without wiring any
// background monitoring.
type Snapshot struct {
	OutputDevices    []*OutputDevice
	InputDevices     []*InputDevice
	DefaultOutput    *OutputDevice
	DefaultInput     *InputDevice
	PlaybackStreams  []*AudioStream
	RecordingStreams []*AudioStream
}

// Service is wayle's PulseAudio-backed audio service. Its properties are
// updated from the dispatcher's loop, which runs on its own locked OS
// thread, and, after a lost connection, from the reconnect loop, which
// publishes empty lists and then the re-enumerated state.
type Service struct {
	mu sync.RWMutex

	OutputDevices    *reactive.Property[[]*OutputDevice]
	InputDevices     *reactive.Property[[]*InputDevice]
	DefaultOutput    *reactive.Property[*OutputDevice]
	DefaultInput     *reactive.Property[*InputDevice]
	PlaybackStreams  *reactive.Property[[]*AudioStream]
	RecordingStreams *reactive.Property[[]*AudioStream]

	outputByIndex map[uint32]*OutputDevice
	inputByIndex  map[uint32]*InputDevice
	streamByIndex map[uint32]*AudioStream

	dispatcher *dispatcher
	conn       io.Closer
	root       *reactive.WatcherToken
}

// Get performs a single bulk fetch: connect, enumerate every facility
// once, and return a Snapshot without starting any background
// monitoring, per the Reactive contract's snapshot half.
func Get(ctx context.Context) (Snapshot, error) {
	client, conn, err := proto.Connect("")
	if err != nil {
		return Snapshot{}, service.New("audio", service.KindBusTransport, "connect", err)
	}
	defer conn.Close()

	svc := newService()
	if err := svc.refreshAll(client); err != nil {
		return Snapshot{}, err
	}
	return svc.snapshot(), nil
}

// GetLive performs the same bulk fetch as Get, then wires the
// dedicated mainloop thread and subscription handling whose
// cancellation is a child of root, returning a live, continuously
// updated Service.
func GetLive(ctx context.Context, root *reactive.WatcherToken) (*Service, error) {
	svc := newService()
	svc.root = root

	client, conn, err := proto.Connect("")
	if err != nil {
		return nil, service.New("audio", service.KindBusTransport, "connect", err)
	}
	svc.dispatcher.client = client
	svc.conn = conn

	if err := svc.refreshAll(client); err != nil {
		conn.Close()
		return nil, err
	}

	svc.StartMonitoring()
	return svc, nil
}

func newService() *Service {
	return &Service{
		OutputDevices:    reactive.New[[]*OutputDevice](nil),
		InputDevices:     reactive.New[[]*InputDevice](nil),
		DefaultOutput:    reactive.New[*OutputDevice](nil),
		DefaultInput:     reactive.New[*InputDevice](nil),
		PlaybackStreams:  reactive.New[[]*AudioStream](nil),
		RecordingStreams: reactive.New[[]*AudioStream](nil),
		outputByIndex:    map[uint32]*OutputDevice{},
		inputByIndex:     map[uint32]*InputDevice{},
		streamByIndex:    map[uint32]*AudioStream{},
		dispatcher:       newDispatcher(),
	}
}

// StartMonitoring runs the dedicated mainloop goroutine and the
// PulseAudio subscription handler. Idempotent at the service level: it
// is only ever called once, from GetLive.
func (s *Service) StartMonitoring() {
	ctx := s.root.Context()
	go s.dispatcher.run(ctx, s)
	go s.subscribe(ctx, s.dispatcher.client, s.conn)
	go s.runReconnectLoop(ctx)
}

// runReconnectLoop watches for the current connection dying and
// re-establishes it with backoff, publishing empty lists in the
// meantime, matching §4.3's "publish empty lists and continue
// attempting to reconnect".
func (s *Service) runReconnectLoop(ctx context.Context) {
	logger := wlog.WithComponent("audio")
	reconnector := service.DefaultReconnector()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dispatcher.disconnected:
		}

		s.publishEmpty()
		err := reconnector.Run(ctx, func() error {
			client, conn, err := proto.Connect("")
			if err != nil {
				return err
			}
			s.dispatcher.client = client
			s.conn = conn
			if err := s.refreshAll(client); err != nil {
				conn.Close()
				return err
			}
			go s.subscribe(ctx, client, conn)
			return nil
		})
		if err != nil {
			logger.Warn().Err(err).Msg("audio reconnect loop stopped")
			return
		}
	}
}

func (s *Service) publishEmpty() {
	s.OutputDevices.Set(nil)
	s.InputDevices.Set(nil)
	s.PlaybackStreams.Set(nil)
	s.RecordingStreams.Set(nil)
	s.DefaultOutput.Set(nil)
	s.DefaultInput.Set(nil)
}

// applyRefresh handles one internally generated refresh command on the
// dispatcher goroutine. Device/stream refreshes re-query the owning
// facility's full list rather than a single entity, trading a little
// extra protocol chatter for not needing a single-entity query per
// wire-protocol command.
func (s *Service) applyRefresh(cmd refreshCommand) {
	client := s.dispatcher.client
	logger := wlog.WithComponent("audio")

	switch cmd.kind {
	case removeEntity:
		s.mu.Lock()
		delete(s.outputByIndex, cmd.index)
		delete(s.inputByIndex, cmd.index)
		delete(s.streamByIndex, cmd.index)
		s.republishLocked()
		s.mu.Unlock()
	case refreshServerInfo:
		info, err := queryServerInfo(client)
		if err != nil {
			logger.Warn().Err(err).Msg("refresh server info failed")
			return
		}
		s.mu.Lock()
		s.applyDefaultsLocked(info)
		s.republishLocked()
		s.mu.Unlock()
	case refreshDevice:
		s.refreshDevices(client, cmd.facility)
	case refreshStream:
		s.refreshStreams(client, cmd.facility)
	}
}

func (s *Service) refreshDevices(client *proto.Client, facility Facility) {
	logger := wlog.WithComponent("audio")
	info, err := queryServerInfo(client)
	if err != nil {
		logger.Warn().Err(err).Msg("refresh device: get server info failed")
		return
	}

	switch facility {
	case FacilitySink:
		sinks, err := querySinks(client)
		if err != nil {
			logger.Warn().Err(err).Msg("refresh sinks failed")
			return
		}
		s.mu.Lock()
		s.outputByIndex = map[uint32]*OutputDevice{}
		for _, sink := range sinks {
			s.outputByIndex[sink.SinkIndex] = sinkToOutput(sink, info.DefaultSinkName)
		}
		s.applyDefaultsLocked(info)
		s.republishLocked()
		s.mu.Unlock()
	case FacilitySource:
		sources, err := querySources(client)
		if err != nil {
			logger.Warn().Err(err).Msg("refresh sources failed")
			return
		}
		s.mu.Lock()
		s.inputByIndex = map[uint32]*InputDevice{}
		for _, src := range sources {
			s.inputByIndex[src.SourceIndex] = sourceToInput(src, info.DefaultSourceName)
		}
		s.applyDefaultsLocked(info)
		s.republishLocked()
		s.mu.Unlock()
	}
}

func (s *Service) refreshStreams(client *proto.Client, facility Facility) {
	logger := wlog.WithComponent("audio")

	switch facility {
	case FacilitySinkInput:
		sinkInputs, err := querySinkInputs(client)
		if err != nil {
			logger.Warn().Err(err).Msg("refresh sink inputs failed")
			return
		}
		s.mu.Lock()
		for idx := range s.streamByIndex {
			if s.streamByIndex[idx].Kind == StreamPlayback {
				delete(s.streamByIndex, idx)
			}
		}
		for _, si := range sinkInputs {
			s.streamByIndex[si.SinkInputIndex] = sinkInputToStream(si)
		}
		s.republishLocked()
		s.mu.Unlock()
	case FacilitySourceOutput:
		sourceOutputs, err := querySourceOutputs(client)
		if err != nil {
			logger.Warn().Err(err).Msg("refresh source outputs failed")
			return
		}
		s.mu.Lock()
		for idx := range s.streamByIndex {
			if s.streamByIndex[idx].Kind == StreamRecording {
				delete(s.streamByIndex, idx)
			}
		}
		for _, so := range sourceOutputs {
			s.streamByIndex[so.SourceOutputIndex] = sourceOutputToStream(so)
		}
		s.republishLocked()
		s.mu.Unlock()
	}
}

// applyDefaultsLocked marks each device's IsDefault flag and republishes
// DefaultOutput/DefaultInput against the server's current default
// sink/source names. Callers must hold s.mu.
func (s *Service) applyDefaultsLocked(info proto.GetServerInfoReply) {
	var def *OutputDevice
	for _, d := range s.outputByIndex {
		isDefault := d.Name.Get() == info.DefaultSinkName
		d.IsDefault.Set(isDefault)
		if isDefault {
			def = d
		}
	}
	s.DefaultOutput.Set(def)

	var defIn *InputDevice
	for _, d := range s.inputByIndex {
		isDefault := d.Name.Get() == info.DefaultSourceName
		d.IsDefault.Set(isDefault)
		if isDefault {
			defIn = d
		}
	}
	s.DefaultInput.Set(defIn)
}

// republishLocked must be called with s.mu held.
func (s *Service) republishLocked() {
	outputs := make([]*OutputDevice, 0, len(s.outputByIndex))
	for _, d := range s.outputByIndex {
		outputs = append(outputs, d)
	}
	inputs := make([]*InputDevice, 0, len(s.inputByIndex))
	for _, d := range s.inputByIndex {
		inputs = append(inputs, d)
	}
	var playback, recording []*AudioStream
	for _, st := range s.streamByIndex {
		if st.Kind == StreamPlayback {
			playback = append(playback, st)
		} else {
			recording = append(recording, st)
		}
	}
	s.OutputDevices.Set(outputs)
	s.InputDevices.Set(inputs)
	s.PlaybackStreams.Set(playback)
	s.RecordingStreams.Set(recording)
}

// refreshAll performs the one-shot bulk enumeration shared by Get and
// GetLive's initial fetch: every facility queried once and merged into
// the index maps, replacing whatever was there before.
func (s *Service) refreshAll(client *proto.Client) error {
	info, err := queryServerInfo(client)
	if err != nil {
		return service.New("audio", service.KindOperationFailed, "GetServerInfo", err)
	}
	sinks, err := querySinks(client)
	if err != nil {
		return service.New("audio", service.KindOperationFailed, "GetSinkInfoList", err)
	}
	sources, err := querySources(client)
	if err != nil {
		return service.New("audio", service.KindOperationFailed, "GetSourceInfoList", err)
	}
	sinkInputs, err := querySinkInputs(client)
	if err != nil {
		return service.New("audio", service.KindOperationFailed, "GetSinkInputInfoList", err)
	}
	sourceOutputs, err := querySourceOutputs(client)
	if err != nil {
		return service.New("audio", service.KindOperationFailed, "GetSourceOutputInfoList", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputByIndex = map[uint32]*OutputDevice{}
	for _, sink := range sinks {
		s.outputByIndex[sink.SinkIndex] = sinkToOutput(sink, info.DefaultSinkName)
	}
	s.inputByIndex = map[uint32]*InputDevice{}
	for _, src := range sources {
		s.inputByIndex[src.SourceIndex] = sourceToInput(src, info.DefaultSourceName)
	}
	s.streamByIndex = map[uint32]*AudioStream{}
	for _, si := range sinkInputs {
		s.streamByIndex[si.SinkInputIndex] = sinkInputToStream(si)
	}
	for _, so := range sourceOutputs {
		s.streamByIndex[so.SourceOutputIndex] = sourceOutputToStream(so)
	}

	s.applyDefaultsLocked(info)
	s.republishLocked()
	return nil
}

func (s *Service) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		OutputDevices:    s.OutputDevices.Get(),
		InputDevices:     s.InputDevices.Get(),
		DefaultOutput:    s.DefaultOutput.Get(),
		DefaultInput:     s.DefaultInput.Get(),
		PlaybackStreams:  s.PlaybackStreams.Get(),
		RecordingStreams: s.RecordingStreams.Get(),
	}
}

// SetVolume issues a rate-limited volume change against the device or
// stream identified by index.
func (s *Service) SetVolume(ctx context.Context, index uint32, volume Volume) error {
	return s.dispatcher.submitCommand(ctx, true, func(client *proto.Client) error {
		return s.applyVolume(client, index, volume)
	})
}

func (s *Service) applyVolume(client *proto.Client, index uint32, volume Volume) error {
	target, err := s.resolveTarget(index)
	if err != nil {
		return err
	}
	cv := cvolumeFromVolume(volume)
	switch target {
	case targetOutput:
		return client.Request(&proto.SetSinkVolume{SinkIndex: index, Volume: cv}, nil)
	case targetInput:
		return client.Request(&proto.SetSourceVolume{SourceIndex: index, Volume: cv}, nil)
	case targetPlaybackStream:
		return client.Request(&proto.SetSinkInputVolume{SinkInputIndex: index, Volume: cv}, nil)
	default:
		return client.Request(&proto.SetSourceOutputVolume{SourceOutputIndex: index, Volume: cv}, nil)
	}
}

// SetMuted issues a mute/unmute change against index. Mute bypasses the
// rate limiter entirely.
func (s *Service) SetMuted(ctx context.Context, index uint32, muted bool) error {
	return s.dispatcher.submitCommand(ctx, false, func(client *proto.Client) error {
		target, err := s.resolveTarget(index)
		if err != nil {
			return err
		}
		switch target {
		case targetOutput:
			return client.Request(&proto.SetSinkMute{SinkIndex: index, Mute: muted}, nil)
		case targetInput:
			return client.Request(&proto.SetSourceMute{SourceIndex: index, Mute: muted}, nil)
		case targetPlaybackStream:
			return client.Request(&proto.SetSinkInputMute{SinkInputIndex: index, Mute: muted}, nil)
		default:
			return client.Request(&proto.SetSourceOutputMute{SourceOutputIndex: index, Mute: muted}, nil)
		}
	})
}

type mutationTarget int

const (
	targetOutput mutationTarget = iota
	targetInput
	targetPlaybackStream
	targetRecordingStream
)

// resolveTarget looks index up across the three local index maps so a
// mutation dispatches the right facility-specific command, rather than
// guessing from the raw index value (PulseAudio indices are not
// globally disambiguated by facility).
func (s *Service) resolveTarget(index uint32) (mutationTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.outputByIndex[index]; ok {
		return targetOutput, nil
	}
	if _, ok := s.inputByIndex[index]; ok {
		return targetInput, nil
	}
	if st, ok := s.streamByIndex[index]; ok {
		if st.Kind == StreamPlayback {
			return targetPlaybackStream, nil
		}
		return targetRecordingStream, nil
	}
	return 0, service.New("audio", service.KindObjectNotFound, "resolveTarget", nil)
}

// subscribe runs the PulseAudio event subscription for the lifetime of
// conn, translating each event into a refreshCommand or a direct
// removal per §4.3's facility/operation table. It also polls
// GetServerInfo on a fixed interval as a liveness check, since a dead
// connection might otherwise go unnoticed until the next user mutation.
// It returns (and signals the reconnect loop) when the connection dies,
// or when ctx is done.
func (s *Service) subscribe(ctx context.Context, client *proto.Client, conn io.Closer) {
	defer conn.Close()
	logger := wlog.WithComponent("audio")

	client.Callback = func(msg interface{}) {
		ev, ok := msg.(*proto.SubscribeEvent)
		if !ok {
			return
		}
		s.handleSubscriptionEvent(*ev)
	}

	if err := client.Request(&proto.Subscribe{Mask: subscriptionMaskAll}, nil); err != nil {
		logger.Warn().Err(err).Msg("pulseaudio subscribe failed")
		s.dispatcher.notifyDisconnected()
		return
	}

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := queryServerInfo(client); err != nil {
				logger.Warn().Err(err).Msg("pulseaudio connection lost")
				s.dispatcher.notifyDisconnected()
				return
			}
		}
	}
}

func (s *Service) handleSubscriptionEvent(ev proto.SubscribeEvent) {
	facility := uint32(ev.Event) & subscriptionFacilityMask
	kind := uint32(ev.Event) & subscriptionTypeMask

	if kind == subscriptionTypeRemove {
		s.dispatcher.submitRefresh(refreshCommand{kind: removeEntity, index: ev.Index})
		return
	}

	switch facility {
	case subscriptionFacilitySink:
		s.dispatcher.submitRefresh(refreshCommand{kind: refreshDevice, index: ev.Index, facility: FacilitySink})
	case subscriptionFacilitySource:
		s.dispatcher.submitRefresh(refreshCommand{kind: refreshDevice, index: ev.Index, facility: FacilitySource})
	case subscriptionFacilitySinkInput:
		s.dispatcher.submitRefresh(refreshCommand{kind: refreshStream, index: ev.Index, facility: FacilitySinkInput})
	case subscriptionFacilitySourceOutput:
		s.dispatcher.submitRefresh(refreshCommand{kind: refreshStream, index: ev.Index, facility: FacilitySourceOutput})
	case subscriptionFacilityServer:
		s.dispatcher.submitRefresh(refreshCommand{kind: refreshServerInfo})
	}
}
