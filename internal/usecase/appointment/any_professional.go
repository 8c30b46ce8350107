package appointment

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/timezone"
)

// ======================================================
// ANY PROFESSIONAL — merged availability
// ======================================================

type AnyProfessionalInput struct {
	BarbershopID uint
	ServiceID    uint
	Date         string
	DisplayTZ    string
}

// MergedSlotDTO annotates each time step with the barbers free for it.
type MergedSlotDTO struct {
	Start     string    `json:"start"`
	End       string    `json:"end"`
	StartAt   time.Time `json:"start_at"`
	Available bool      `json:"available"`
	BarberIDs []uint    `json:"barber_ids"`
}

type AnyProfessionalResult struct {
	Date     string          `json:"date"`
	Timezone string          `json:"timezone"`
	Slots    []MergedSlotDTO `json:"slots"`
}

type AnyProfessionalAvailability struct {
	repo domain.Repository
	clk  clock.Clock
}

func NewAnyProfessionalAvailability(
	repo domain.Repository,
	clk clock.Clock,
) *AnyProfessionalAvailability {
	return &AnyProfessionalAvailability{repo: repo, clk: clk}
}

// Execute fans the slot generator out across every barber offering the
// service and unions the results per time step.
func (uc *AnyProfessionalAvailability) Execute(
	ctx context.Context,
	in AnyProfessionalInput,
) (*AnyProfessionalResult, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}
	rules := timeRulesFor(shop)

	svc, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidService)
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, rules.Location)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidDate)
	}

	barbers, err := uc.repo.ListBarbersForService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	now := uc.clk.Now()

	type merged struct {
		end       time.Time
		barberIDs []uint
	}
	byStart := make(map[time.Time]*merged)

	for i := range barbers {
		slots, err := daySlots(ctx, uc.repo, rules, barbers[i].ID, svc, day, now, false)
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			m, ok := byStart[s.Start]
			if !ok {
				m = &merged{end: s.End}
				byStart[s.Start] = m
			}
			if s.Available {
				m.barberIDs = append(m.barberIDs, barbers[i].ID)
			}
		}
	}

	starts := make([]time.Time, 0, len(byStart))
	for t := range byStart {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	displayTZ := in.DisplayTZ
	if displayTZ == "" {
		displayTZ = shop.Timezone
	}
	displayLoc := timezone.Location(displayTZ)

	out := &AnyProfessionalResult{Date: in.Date, Timezone: displayTZ}
	for _, t := range starts {
		m := byStart[t]
		out.Slots = append(out.Slots, MergedSlotDTO{
			Start:     t.In(displayLoc).Format("15:04"),
			End:       m.end.In(displayLoc).Format("15:04"),
			StartAt:   t.In(displayLoc),
			Available: len(m.barberIDs) > 0,
			BarberIDs: m.barberIDs,
		})
	}

	return out, nil
}

// ======================================================
// AUTO-ASSIGNMENT
// ======================================================

// BarberPicker selects uniformly at random among the barbers free for an
// exact interval, spreading load across the roster. The rand source is
// injected so tests can pin the choice. Selection always happens at
// commit time against live data, never reusing a pick made for display.
type BarberPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBarberPicker(rnd *rand.Rand) *BarberPicker {
	return &BarberPicker{rnd: rnd}
}

func (p *BarberPicker) Pick(
	ctx context.Context,
	repo domain.Repository,
	shop *models.Barbershop,
	svc *models.Service,
	start time.Time,
	now time.Time,
) (*models.User, error) {

	barbers, err := repo.ListBarbersForService(ctx, shop.ID, svc.ID)
	if err != nil {
		return nil, err
	}

	var eligible []models.User
	for i := range barbers {
		err := slotCheck(ctx, repo, shop, &barbers[i], svc, start, now, 0)
		switch {
		case err == nil:
			eligible = append(eligible, barbers[i])
		case isPerBarberReject(err):
			continue
		default:
			// Time-rule violations hold for every barber; surface them.
			return nil, err
		}
	}

	if len(eligible) == 0 {
		return nil, httperr.ErrBusiness(httperr.CodeNoAvailability)
	}

	p.mu.Lock()
	idx := p.rnd.Intn(len(eligible))
	p.mu.Unlock()

	return &eligible[idx], nil
}

func isPerBarberReject(err error) bool {
	return httperr.IsBusiness(err, httperr.CodeSlotConflict) ||
		httperr.IsBusiness(err, httperr.CodeBarberUnavailable) ||
		httperr.IsBusiness(err, httperr.CodeOutsideBusinessHours)
}
