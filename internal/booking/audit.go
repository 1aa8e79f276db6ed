package booking

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahinestrog/railway/internal/station"
)

type StoreSummary struct {
	Store   string
	Trains  int
	Tickets int
}

// MissingTrain is a train id some stores hold and others do not.
type MissingTrain struct {
	TrainID int64
	Absent  []string
}

// DivergentTrain is a train id whose row differs from the first store
// holding it. Counters drift this way whenever a booking is seated in one
// store but not the other.
type DivergentTrain struct {
	TrainID   int64
	Reference string
	Stores    []string
}

type AuditReport struct {
	Stores    []StoreSummary
	Missing   []MissingTrain
	Divergent []DivergentTrain
}

func (r *AuditReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Divergent) == 0
}

// Audit compares the trains of every store by id. It only reports.
func (s *Service) Audit(ctx context.Context) (*AuditReport, error) {
	rep := &AuditReport{}
	perStore := make([]map[int64]station.Train, len(s.stores))
	ids := map[int64]bool{}

	for i, st := range s.stores {
		trains, err := st.Trains(ctx)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", st.Name(), err)
		}
		tickets, err := st.Tickets(ctx)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", st.Name(), err)
		}
		rep.Stores = append(rep.Stores, StoreSummary{Store: st.Name(), Trains: len(trains), Tickets: len(tickets)})

		perStore[i] = make(map[int64]station.Train, len(trains))
		for _, t := range trains {
			perStore[i][t.ID] = t
			ids[t.ID] = true
		}
	}

	sorted := make([]int64, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		var (
			absent    []string
			ref       *station.Train
			refStore  string
			divergent []string
		)
		for i, st := range s.stores {
			t, ok := perStore[i][id]
			if !ok {
				absent = append(absent, st.Name())
				continue
			}
			if ref == nil {
				ref, refStore = &t, st.Name()
				continue
			}
			if !ref.SameAs(t) {
				divergent = append(divergent, st.Name())
			}
		}
		if len(absent) > 0 {
			rep.Missing = append(rep.Missing, MissingTrain{TrainID: id, Absent: absent})
		}
		if len(divergent) > 0 {
			rep.Divergent = append(rep.Divergent, DivergentTrain{TrainID: id, Reference: refStore, Stores: divergent})
		}
	}
	return rep, nil
}
