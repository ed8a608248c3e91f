package phase

import "fastpull/internal/config"

// Factory builds phase tables for configured workloads
type Factory interface {
	Table(workload string) (*Table, error)
}

type factory struct {
	cfg *config.Config
}

// NewFactory creates a table factory over the loaded configuration
func NewFactory(cfg *config.Config) Factory {
	return &factory{cfg: cfg}
}

func (f *factory) Table(workload string) (*Table, error) {
	w, err := f.cfg.Workload(workload)
	if err != nil {
		return nil, err
	}

	return NewTable(w)
}
