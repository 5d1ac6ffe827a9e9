package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hearth/internal/core"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	query := r.URL.Query()

	month, year, err := parseMonthYear(query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	userID := query.Get("user_id")

	key := id.FamilyID + "|" + userID + "|" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	if cached, found := s.dashCache.Get(key); found {
		writeJSON(w, http.StatusOK, dashboardView(cached))
		return
	}

	stats, err := s.stats.Dashboard(r.Context(), id.FamilyID, userID, month, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.dashCache.Set(key, stats)
	writeJSON(w, http.StatusOK, dashboardView(stats))
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	year, err := parseOptionalInt(r.URL.Query(), "year")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if year == 0 {
		year = time.Now().Year()
	}

	key := id.FamilyID + "|trend|" + strconv.Itoa(year)
	points, found := s.trendCache.Get(key)
	if !found {
		points, err = s.stats.MonthlyTrend(r.Context(), id.FamilyID, year)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.trendCache.Set(key, points)
	}

	views := make([]trendPointJSON, 0, len(points))
	for _, p := range points {
		views = append(views, trendPointJSON{
			Month:      p.Month,
			Income:     p.Income.String(),
			Expense:    p.Expense.String(),
			Investment: p.Investment.String(),
			Profit:     p.Profit.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "months": views})
}

func (s *Server) handleInvestmentTargets(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	entries, err := s.investments.Targets(r.Context(), id.FamilyID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"targets": investmentEntryViews(entries),
		"count":   len(entries),
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	month, year, err := parseMonthYear(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries, err := s.budget.Status(r.Context(), id.FamilyID, month, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":    month,
		"year":     year,
		"statuses": budgetEntryViews(entries),
		"count":    len(entries),
	})
}

func (s *Server) handlePeriodStats(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	query := r.URL.Query()

	period, err := s.resolvePeriod(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	stats, err := s.stats.PeriodStats(r.Context(), id.FamilyID, query.Get("user_id"), period)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periodStatsView(stats))
}

// resolvePeriod builds a Period from the period_type query parameter
// and its type-specific companions.
func (s *Server) resolvePeriod(r *http.Request) (core.Period, error) {
	query := r.URL.Query()
	now := time.Now()

	year, err := parseOptionalInt(query, "year")
	if err != nil {
		return core.Period{}, err
	}
	if year == 0 {
		year = now.Year()
	}

	switch core.PeriodType(query.Get("period_type")) {
	case core.PeriodMonthly, "":
		month, err := parseOptionalInt(query, "month")
		if err != nil {
			return core.Period{}, err
		}
		if month == 0 {
			month = int(now.Month())
		}
		return core.MonthlyPeriod(month, year)

	case core.PeriodQuarterly:
		quarter, err := parseOptionalInt(query, "quarter")
		if err != nil {
			return core.Period{}, err
		}
		return core.QuarterlyPeriod(quarter, year)

	case core.PeriodHalfYearly:
		half, err := parseOptionalInt(query, "half")
		if err != nil {
			return core.Period{}, err
		}
		return core.HalfYearlyPeriod(half, year)

	case core.PeriodAnnual:
		return core.AnnualPeriod(year)

	case core.PeriodCustom:
		start, err := parseDate(query.Get("start_date"))
		if err != nil {
			return core.Period{}, fmt.Errorf("start_date: %w", err)
		}
		end, err := parseDate(query.Get("end_date"))
		if err != nil {
			return core.Period{}, fmt.Errorf("end_date: %w", err)
		}
		// end_date is inclusive on the wire; extend to the next
		// midnight for the half-open range.
		return core.CustomPeriod(start.Time, end.Time.AddDate(0, 0, 1))

	default:
		return core.Period{}, fmt.Errorf("%w: unknown period_type %q", core.ErrInvalidPeriod, query.Get("period_type"))
	}
}
