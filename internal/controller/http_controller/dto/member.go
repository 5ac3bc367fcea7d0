package dto

import (
	"github.com/horockey/kubeping/internal/mapper"
	"github.com/horockey/kubeping/internal/model"
	"github.com/samber/lo"
)

type Member struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	Port            int    `json:"port"`
	UniqueID        string `json:"unique_id"`
	AliveTimeMillis int64  `json:"alive_time_ms"`
}

type Members struct {
	Hostname string         `json:"hostname"`
	Members  []Member       `json:"members"`
	Skipped  map[string]int `json:"skipped"`
}

func NewMember(m model.Member) Member {
	return Member{
		Name:            m.Name,
		Address:         m.Address,
		Port:            m.Port,
		UniqueID:        m.UniqueIDHex(),
		AliveTimeMillis: m.AliveTimeMillis,
	}
}

func NewMembers(hostname string, res mapper.Result) Members {
	return Members{
		Hostname: hostname,
		Members: lo.Map(res.Members, func(el model.Member, _ int) Member {
			return NewMember(el)
		}),
		Skipped: lo.CountValuesBy(res.Skipped, func(el model.Skip) string {
			return string(el.Reason)
		}),
	}
}
