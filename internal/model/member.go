package model

import (
	"encoding/hex"
	"net"
	"strconv"
	"time"
)

// PhaseRunning is the only instance phase treated as alive.
const PhaseRunning = "Running"

// Identity of the local process, captured once on provider creation.
type Identity struct {
	Hostname  string
	StartTime time.Time
}

// Instance is one workload entry reported by the control plane.
type Instance struct {
	Name         string
	IP           string
	Phase        string
	CreationTime time.Time
}

// SnapshotEntry holds either a decoded instance or the reason it could not be decoded.
type SnapshotEntry struct {
	Index    int
	Instance Instance
	Err      error
}

// Snapshot is a point-in-time list of workload entries in API order.
type Snapshot struct {
	Entries []SnapshotEntry
}

// Member is a live peer as reported to the host cluster framework.
type Member struct {
	Name            string
	Address         string
	Port            int
	UniqueID        []byte
	AliveTimeMillis int64
}

func (m Member) Addr() string {
	return net.JoinHostPort(m.Address, strconv.Itoa(m.Port))
}

func (m Member) UniqueIDHex() string {
	return hex.EncodeToString(m.UniqueID)
}
