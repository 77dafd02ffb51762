package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gridwatch/powerdash/internal/cache"
	"github.com/gridwatch/powerdash/internal/derive"
	"github.com/gridwatch/powerdash/internal/domain"
	"github.com/gridwatch/powerdash/internal/service"
)

const analysisCacheTTL = 30 * time.Second

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okCount(c *fiber.Ctx, data any, count int) error {
	return c.JSON(fiber.Map{"success": true, "data": data, "count": count})
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
}

func Register(app *fiber.App, svcs *service.Services, store *cache.Cache) {
	g := app.Group("/power")

	g.Get("/last7", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.LatestReadings(7)
		if err != nil {
			return fail(c, err)
		}
		return okCount(c, items, len(items))
	})

	g.Get("/analysis/peak-usage", cached(store, "analysis:peak-usage", func(c *fiber.Ctx) (any, error) {
		return svcs.Repos.PeakUsage(7, 10)
	}))

	g.Get("/analysis/load-pattern", cached(store, "analysis:load-pattern", func(c *fiber.Ctx) (any, error) {
		return svcs.Repos.LoadPattern(7)
	}))

	g.Get("/analysis/power-factor", cached(store, "analysis:power-factor", func(c *fiber.Ctx) (any, error) {
		return svcs.Repos.PowerFactorSummary(7)
	}))

	g.Get("/statistics", func(c *fiber.Ctx) error {
		days, err := strconv.Atoi(c.Query("days", "7"))
		if err != nil || days < 1 {
			days = 7
		}
		stats, err := svcs.Repos.Statistics(days)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, stats)
	})

	g.Get("/alerts", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.ListAlerts(100)
		if err != nil {
			return fail(c, err)
		}
		return okCount(c, items, len(items))
	})

	g.Get("/alerts/summary", func(c *fiber.Ctx) error {
		summary, err := svcs.Repos.AlertSummary()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, summary)
	})

	g.Get("/reports/monthly", func(c *fiber.Ctx) error {
		reports, err := svcs.Repos.MonthlyReports()
		if err != nil {
			return fail(c, err)
		}
		for i := range reports {
			priced(&reports[i])
		}
		return okCount(c, reports, len(reports))
	})

	g.Get("/reports/current-month", func(c *fiber.Ctx) error {
		report, err := svcs.Repos.CurrentMonthReport()
		if err != nil {
			return fail(c, err)
		}
		priced(report)
		return ok(c, report)
	})

	g.Get("/hourly/all", history(svcs, "hour"))
	g.Get("/daily/all", history(svcs, "day"))
	g.Get("/monthly/all", history(svcs, "month"))
}

func history(svcs *service.Services, granularity string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svcs.Repos.EnergyBuckets(granularity)
		if err != nil {
			return fail(c, err)
		}
		return okCount(c, items, len(items))
	}
}

// cached wraps an analysis computation with a short Redis TTL.
func cached(store *cache.Cache, key string, compute func(*fiber.Ctx) (any, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var hit any
		if store != nil && store.GetJSON(c.Context(), key, &hit) {
			return ok(c, hit)
		}
		data, err := compute(c)
		if err != nil {
			return fail(c, err)
		}
		if store != nil {
			store.SetJSON(c.Context(), key, data, analysisCacheTTL)
		}
		return ok(c, data)
	}
}

func priced(r *domain.MonthlyReport) {
	cost := derive.CostOf(r.TotalEnergy)
	r.CostLocal = cost.Local
	r.CostUSD = cost.USD
}
