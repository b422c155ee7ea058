package providers

import (
	"math"

	"github.com/worldland/netstats/internal/domain"
)

// Summarize aggregates capacity and availability across a provider list.
// Hardware totals only count online providers.
func Summarize(list []domain.ProviderRecord) domain.NetworkSummary {
	s := domain.NetworkSummary{
		Total:    len(list),
		Versions: make(map[string]int),
	}
	var uptimeSum float64
	for i := range list {
		p := &list[i]
		uptimeSum += p.Uptime

		version := p.Version
		if version == "" {
			version = "Unknown"
		}
		s.Versions[version]++

		if !p.Online {
			s.Offline++
			continue
		}
		s.Online++
		if p.ComputingNow {
			s.Computing++
		}

		props := p.VMProperties()
		if threads, ok := props.Int(domain.PropCPUThreads); ok {
			s.CPUThreads += threads
		}
		if mem, ok := props.Float(domain.PropMemoryGiB); ok {
			s.MemoryGiB += mem
		}
		if disk, ok := props.Float(domain.PropStorageGiB); ok {
			s.StorageGiB += disk
		}
		if gpu, ok := p.Runtime(domain.RuntimeVMNvidia); ok {
			if models, ok := gpu.Properties.Strings(domain.PropGPUModel); ok {
				s.GPUs += len(models)
			}
		}
	}
	if len(list) > 0 {
		s.AverageUptime = math.Round(uptimeSum/float64(len(list))*100) / 100
	}
	return s
}
