package mapper

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net/netip"

	"github.com/horockey/kubeping/internal/model"
)

var (
	errNoPhase        = errors.New("missing status.phase")
	errNoName         = errors.New("missing metadata.name")
	errNoIP           = errors.New("missing status.podIP")
	errNoCreationTime = errors.New("missing metadata.creationTimestamp")
)

// Result of mapping one snapshot. Skipped is informational only.
type Result struct {
	Members []model.Member
	Skipped []model.Skip
}

type Mapper struct {
	hashFunc          model.HashFunc
	allowNegativeTime bool
}

func New(hashFunc model.HashFunc, allowNegativeTime bool) *Mapper {
	if hashFunc == nil {
		hashFunc = MD5
	}
	return &Mapper{
		hashFunc:          hashFunc,
		allowNegativeTime: allowNegativeTime,
	}
}

// MD5 is the default unique id derivation: a 16 byte digest of the name.
func MD5(name string) []byte {
	sum := md5.Sum([]byte(name))
	return sum[:]
}

// Map converts snapshot entries to members in snapshot order.
// Entries that are malformed, not running, or the local node itself are
// skipped and reported in Result.Skipped.
func (m *Mapper) Map(snap model.Snapshot, identity model.Identity, port int) Result {
	res := Result{
		Members: make([]model.Member, 0, len(snap.Entries)),
	}

	for _, entry := range snap.Entries {
		member, skip, ok := m.mapEntry(entry, identity, port)
		if !ok {
			res.Skipped = append(res.Skipped, skip)
			continue
		}
		res.Members = append(res.Members, member)
	}

	return res
}

func (m *Mapper) mapEntry(
	entry model.SnapshotEntry,
	identity model.Identity,
	port int,
) (model.Member, model.Skip, bool) {
	inst := entry.Instance
	skip := model.Skip{Index: entry.Index, Name: inst.Name}

	if entry.Err != nil {
		skip.Reason, skip.Err = model.SkipMalformed, entry.Err
		return model.Member{}, skip, false
	}
	if inst.Phase == "" {
		skip.Reason, skip.Err = model.SkipMalformed, errNoPhase
		return model.Member{}, skip, false
	}
	if inst.Phase != model.PhaseRunning {
		skip.Reason = model.SkipNotRunning
		return model.Member{}, skip, false
	}

	if err := validate(inst); err != nil {
		skip.Reason, skip.Err = model.SkipMalformed, err
		return model.Member{}, skip, false
	}

	if inst.Name == identity.Hostname {
		skip.Reason = model.SkipSelf
		return model.Member{}, skip, false
	}

	addr, err := netip.ParseAddr(inst.IP)
	if err != nil {
		skip.Reason, skip.Err = model.SkipInvalidAddress, fmt.Errorf("parsing pod ip: %w", err)
		return model.Member{}, skip, false
	}

	return model.Member{
		Name:            inst.Name,
		Address:         addr.String(),
		Port:            port,
		UniqueID:        m.hashFunc(inst.Name),
		AliveTimeMillis: m.AliveTimeMillis(inst, identity),
	}, model.Skip{}, true
}

func validate(inst model.Instance) error {
	switch {
	case inst.IP == "":
		return errNoIP
	case inst.Name == "":
		return errNoName
	case inst.CreationTime.IsZero():
		return errNoCreationTime
	}
	return nil
}

// AliveTimeMillis is the time between the pod creation and the local start.
// Pods created after the local start get 0 unless negative values are allowed.
func (m *Mapper) AliveTimeMillis(inst model.Instance, identity model.Identity) int64 {
	alive := identity.StartTime.Sub(inst.CreationTime).Milliseconds()
	if alive < 0 && !m.allowNegativeTime {
		return 0
	}
	return alive
}
