package dto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/horockey/kubeping/internal/model"
	corev1 "k8s.io/api/core/v1"
)

var ErrMissingItems = errors.New("missing items array")

// PodList keeps items raw so that one broken pod does not fail the whole list.
type PodList struct {
	Kind  string             `json:"kind"`
	Items *[]json.RawMessage `json:"items"`
}

func PodListToModel(data []byte) (model.Snapshot, error) {
	list := PodList{}
	if err := json.Unmarshal(data, &list); err != nil {
		return model.Snapshot{}, fmt.Errorf("unmarshaling json: %w", err)
	}
	if list.Items == nil {
		return model.Snapshot{}, ErrMissingItems
	}

	res := model.Snapshot{Entries: make([]model.SnapshotEntry, 0, len(*list.Items))}
	for idx, raw := range *list.Items {
		inst, err := PodToModel(raw)
		res.Entries = append(res.Entries, model.SnapshotEntry{
			Index:    idx,
			Instance: inst,
			Err:      err,
		})
	}

	return res, nil
}

func PodToModel(raw json.RawMessage) (model.Instance, error) {
	pod := corev1.Pod{}
	if err := json.Unmarshal(raw, &pod); err != nil {
		return model.Instance{}, fmt.Errorf("unmarshaling pod: %w", err)
	}

	return model.Instance{
		Name:         pod.Name,
		IP:           pod.Status.PodIP,
		Phase:        string(pod.Status.Phase),
		CreationTime: pod.CreationTimestamp.Time,
	}, nil
}
