package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the read-only source data one entry is computed from.
type Snapshot struct {
	Records    []attendance.Record
	Leaves     []leave.Application
	Components []compensation.Component
}

// SnapshotLoader reads attendance, approved leave and every compensation store
// for one employee concurrently. Reads are not locked: payroll runs after the
// period closes and the source rows are treated as frozen.
type SnapshotLoader struct {
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	stores         []compensation.Store
}

func NewSnapshotLoader(
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	stores ...compensation.Store,
) *SnapshotLoader {
	return &SnapshotLoader{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		stores:         stores,
	}
}

func (l *SnapshotLoader) Load(ctx context.Context, employeeID, companyID string, period payroll.Period) (Snapshot, error) {
	var snap Snapshot
	perStore := make([][]compensation.Component, len(l.stores))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := l.attendanceRepo.ListByEmployeeAndRange(gctx, employeeID, companyID, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		snap.Records = records
		return nil
	})

	g.Go(func() error {
		leaves, err := l.leaveRepo.ListApprovedByEmployeeAndRange(gctx, employeeID, companyID, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("failed to list approved leave: %w", err)
		}
		snap.Leaves = leaves
		return nil
	})

	for i, store := range l.stores {
		i, store := i, store // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			components, err := store.ListByEmployeeAndPeriod(gctx, employeeID, companyID, compensation.Period{
				Start: period.Start,
				End:   period.End,
			})
			if err != nil {
				return fmt.Errorf("failed to list %s components: %w", store.Kind(), err)
			}
			perStore[i] = components
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	for _, components := range perStore {
		snap.Components = append(snap.Components, components...)
	}
	return snap, nil
}
