package confedit

import (
	"context"
	"errors"
	"testing"

	"github.com/stokerd/console/internal/protocol"
)

// fakeRemote scripts the daemon side of the tracker's two calls.
type fakeRemote struct {
	cfg  *protocol.ResolvedConfig
	mask *protocol.ConfigMask

	getErr    error
	updateErr error

	updates []protocol.ResolvedConfig
}

func (f *fakeRemote) GetConfig(context.Context) (*protocol.ResolvedConfig, *protocol.ConfigMask, error) {
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	return f.cfg, f.mask, nil
}

func (f *fakeRemote) UpdateConfig(_ context.Context, cfg protocol.ResolvedConfig, _ protocol.ConfigMask) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, cfg)
	return nil
}

func baseConfig() (protocol.ResolvedConfig, protocol.ConfigMask) {
	return protocol.ResolvedConfig{
			JavaPath:      "/usr/bin/java",
			ServerJarPath: "/srv/server.jar",
			Arguments:     protocol.ParsedArguments("-Xmx4G"),
		}, protocol.ConfigMask{
			JavaPath:  protocol.JavaAutoDetect,
			Arguments: protocol.ArgumentsParsed,
			User:      protocol.UserCurrent,
		}
}

func loadedTracker(t *testing.T) (*Tracker, *fakeRemote) {
	t.Helper()
	cfg, mask := baseConfig()
	remote := &fakeRemote{cfg: &cfg, mask: &mask}
	tracker := &Tracker{}
	if err := tracker.Load(context.Background(), remote); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tracker, remote
}

func strp(s string) *string { return &s }

func TestLoadSetsBufferAndBaseline(t *testing.T) {
	tracker, _ := loadedTracker(t)
	if !tracker.Loaded() || tracker.Missing() || tracker.Dirty() {
		t.Fatalf("after load: loaded=%v missing=%v dirty=%v", tracker.Loaded(), tracker.Missing(), tracker.Dirty())
	}
	buf, _ := tracker.Buffer()
	base, _ := tracker.Baseline()
	if !buf.Equal(base) {
		t.Fatal("buffer and baseline should match after load")
	}
}

func TestLoadAbsentSetsMissing(t *testing.T) {
	tracker := &Tracker{}
	if err := tracker.Load(context.Background(), &fakeRemote{}); err != nil {
		t.Fatalf("Load absent: %v", err)
	}
	if !tracker.Missing() || tracker.Loaded() || tracker.Dirty() {
		t.Fatalf("absent config: missing=%v loaded=%v dirty=%v", tracker.Missing(), tracker.Loaded(), tracker.Dirty())
	}
}

func TestLoadErrorPropagates(t *testing.T) {
	tracker := &Tracker{}
	boom := errors.New("session lost")
	err := tracker.Load(context.Background(), &fakeRemote{getErr: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("Load error = %v, want %v", err, boom)
	}
}

func TestEditDirtiness(t *testing.T) {
	tracker, _ := loadedTracker(t)

	tracker.Edit(FieldUpdate{JavaPath: strp("/opt/jdk/bin/java")})
	if !tracker.Dirty() {
		t.Fatal("java path edit should dirty the session")
	}

	// Editing back to the baseline value cleans it again: dirtiness is a
	// pure function of buffer vs baseline, not an edit counter.
	tracker.Edit(FieldUpdate{JavaPath: strp("/usr/bin/java")})
	if tracker.Dirty() {
		t.Fatal("restoring the baseline value should clean the session")
	}
}

func TestDirtinessComparesUnionStructurally(t *testing.T) {
	tracker, _ := loadedTracker(t)

	// Same flat text under a different discriminant is a real change.
	args := protocol.ManualArguments("-Xmx4G")
	tracker.Edit(FieldUpdate{Arguments: &args})
	if !tracker.Dirty() {
		t.Fatal("discriminant change should dirty the session")
	}

	back := protocol.ParsedArguments("-Xmx4G")
	tracker.Edit(FieldUpdate{Arguments: &back})
	if tracker.Dirty() {
		t.Fatal("restoring the union should clean the session")
	}
}

func TestDirtinessComparesManualListElementwise(t *testing.T) {
	cfg, mask := baseConfig()
	cfg.Arguments = protocol.ManualArguments("-Xmx4G", "-jar")
	mask.Arguments = protocol.ArgumentsManual
	remote := &fakeRemote{cfg: &cfg, mask: &mask}
	tracker := &Tracker{}
	if err := tracker.Load(context.Background(), remote); err != nil {
		t.Fatalf("Load: %v", err)
	}

	longer := protocol.ManualArguments("-Xmx4G", "-jar", "--nogui")
	tracker.Edit(FieldUpdate{Arguments: &longer})
	if !tracker.Dirty() {
		t.Fatal("list length change should dirty the session")
	}

	swapped := protocol.ManualArguments("-Xmx4G", "-server")
	tracker.Edit(FieldUpdate{Arguments: &swapped})
	if !tracker.Dirty() {
		t.Fatal("element change should dirty the session")
	}

	orig := protocol.ManualArguments("-Xmx4G", "-jar")
	tracker.Edit(FieldUpdate{Arguments: &orig})
	if tracker.Dirty() {
		t.Fatal("restoring the list should clean the session")
	}
}

func TestMaskOnlyEditIsDirty(t *testing.T) {
	tracker, _ := loadedTracker(t)
	kind := protocol.JavaCustom
	tracker.Edit(FieldUpdate{JavaPathKind: &kind})
	if !tracker.Dirty() {
		t.Fatal("mask change alone should dirty the session")
	}
}

func TestSaveAdvancesBaseline(t *testing.T) {
	tracker, remote := loadedTracker(t)
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/paper.jar")})

	if err := tracker.Save(context.Background(), remote); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tracker.Dirty() {
		t.Fatal("session should be clean after save ack")
	}
	base, _ := tracker.Baseline()
	if base.ServerJarPath != "/srv/paper.jar" {
		t.Fatalf("baseline jar = %q, want advanced value", base.ServerJarPath)
	}
	if len(remote.updates) != 1 || remote.updates[0].ServerJarPath != "/srv/paper.jar" {
		t.Fatalf("daemon received %#v", remote.updates)
	}
}

func TestSaveFailurePreservesEdits(t *testing.T) {
	tracker, remote := loadedTracker(t)
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/paper.jar")})

	remote.updateErr = errors.New("disk full")
	if err := tracker.Save(context.Background(), remote); err == nil {
		t.Fatal("Save should surface the daemon failure")
	}
	if !tracker.Dirty() {
		t.Fatal("edits must survive a failed save")
	}
	buf, _ := tracker.Buffer()
	if buf.ServerJarPath != "/srv/paper.jar" {
		t.Fatalf("buffer jar = %q, want edit preserved", buf.ServerJarPath)
	}

	// The user may retry once the daemon recovers.
	remote.updateErr = nil
	if err := tracker.Save(context.Background(), remote); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if tracker.Dirty() {
		t.Fatal("retry ack should clean the session")
	}
}

func TestSaveRejectsUnparseableArguments(t *testing.T) {
	tracker, remote := loadedTracker(t)
	bad := protocol.ParsedArguments(`-Xmx4G "unterminated`)
	tracker.Edit(FieldUpdate{Arguments: &bad})

	if err := tracker.Save(context.Background(), remote); err == nil {
		t.Fatal("unparseable arguments should fail before the wire")
	}
	if len(remote.updates) != 0 {
		t.Fatal("no update should reach the daemon")
	}
	if !tracker.Dirty() {
		t.Fatal("edits must survive a rejected save")
	}
}

func TestAcknowledgeAdvancesToAcknowledgedValue(t *testing.T) {
	tracker, _ := loadedTracker(t)
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/paper.jar")})
	saved, savedMask := tracker.Buffer()

	tracker.Acknowledge(saved, savedMask)
	if tracker.Dirty() {
		t.Fatal("session should be clean once the saved value is acknowledged")
	}
	base, _ := tracker.Baseline()
	if base.ServerJarPath != "/srv/paper.jar" {
		t.Fatalf("baseline jar = %q, want acknowledged value", base.ServerJarPath)
	}
}

func TestAcknowledgeKeepsInFlightEdits(t *testing.T) {
	tracker, _ := loadedTracker(t)
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/paper.jar")})
	saved, savedMask := tracker.Buffer()

	// A further edit lands while the save is still on the wire. The daemon
	// never saw it, so the ack must not fold it into the baseline.
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/paper-v2.jar")})

	tracker.Acknowledge(saved, savedMask)
	base, _ := tracker.Baseline()
	if base.ServerJarPath != "/srv/paper.jar" {
		t.Fatalf("baseline jar = %q, want the acknowledged value", base.ServerJarPath)
	}
	if !tracker.Dirty() {
		t.Fatal("the in-flight edit was never saved, session must stay dirty")
	}
	buf, _ := tracker.Buffer()
	if buf.ServerJarPath != "/srv/paper-v2.jar" {
		t.Fatalf("buffer jar = %q, want the later edit preserved", buf.ServerJarPath)
	}
}

func TestAcknowledgeClearsMissing(t *testing.T) {
	tracker := &Tracker{}
	if err := tracker.Load(context.Background(), &fakeRemote{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	args := protocol.ParsedArguments("-Xmx2G")
	tracker.Edit(FieldUpdate{ServerJarPath: strp("/srv/server.jar"), Arguments: &args})
	saved, savedMask := tracker.Buffer()

	tracker.Acknowledge(saved, savedMask)
	if tracker.Missing() || !tracker.Loaded() || tracker.Dirty() {
		t.Fatalf("after first ack: missing=%v loaded=%v dirty=%v", tracker.Missing(), tracker.Loaded(), tracker.Dirty())
	}
}

func TestResetRestoresBaselineWithoutRemoteCall(t *testing.T) {
	tracker, remote := loadedTracker(t)
	tracker.Edit(FieldUpdate{JavaPath: strp("/opt/jdk/bin/java")})
	if !tracker.Dirty() {
		t.Fatal("precondition: edit should dirty the session")
	}

	tracker.Reset()
	if tracker.Dirty() {
		t.Fatal("reset should clean the session")
	}
	buf, _ := tracker.Buffer()
	base, _ := tracker.Baseline()
	if !buf.Equal(base) {
		t.Fatal("buffer should equal baseline after reset")
	}
	if len(remote.updates) != 0 {
		t.Fatal("reset must not issue a remote call")
	}
}

func TestRemoteChangedOverwritesUnsavedEdits(t *testing.T) {
	tracker, _ := loadedTracker(t)
	tracker.Edit(FieldUpdate{JavaPath: strp("/opt/jdk/bin/java")})

	pushed, pushedMask := baseConfig()
	pushed.ServerJarPath = "/srv/other.jar"
	tracker.RemoteChanged(pushed, pushedMask)

	// Last writer wins: the push discards local edits.
	if tracker.Dirty() {
		t.Fatal("push should leave a clean session")
	}
	buf, _ := tracker.Buffer()
	if buf.JavaPath != "/usr/bin/java" || buf.ServerJarPath != "/srv/other.jar" {
		t.Fatalf("buffer = %#v, want pushed value", buf)
	}
	base, _ := tracker.Baseline()
	if !buf.Equal(base) {
		t.Fatal("push overwrites buffer and baseline alike")
	}
}

func TestSaveCreatesConfigWhenMissing(t *testing.T) {
	tracker := &Tracker{}
	remote := &fakeRemote{}
	if err := tracker.Load(context.Background(), remote); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tracker.Missing() {
		t.Fatal("precondition: daemon unconfigured")
	}

	args := protocol.ParsedArguments("-Xmx2G")
	tracker.Edit(FieldUpdate{
		ServerJarPath: strp("/srv/server.jar"),
		Arguments:     &args,
	})
	if err := tracker.Save(context.Background(), remote); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tracker.Missing() || !tracker.Loaded() || tracker.Dirty() {
		t.Fatalf("after first save: missing=%v loaded=%v dirty=%v", tracker.Missing(), tracker.Loaded(), tracker.Dirty())
	}
}

func TestBufferAccessorReturnsCopy(t *testing.T) {
	cfg, mask := baseConfig()
	cfg.Arguments = protocol.ManualArguments("-a")
	mask.Arguments = protocol.ArgumentsManual
	remote := &fakeRemote{cfg: &cfg, mask: &mask}
	tracker := &Tracker{}
	if err := tracker.Load(context.Background(), remote); err != nil {
		t.Fatalf("Load: %v", err)
	}

	buf, _ := tracker.Buffer()
	buf.Arguments.Manual[0] = "-z"
	again, _ := tracker.Buffer()
	if again.Arguments.Manual[0] != "-a" {
		t.Fatal("Buffer must not alias internal storage")
	}
}
