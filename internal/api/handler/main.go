package handler

import (
	"net/http"

	"lamah/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Validator = NewValidator()
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🤖")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		d := groupDataVersion{cfg.Container}
		routesAPIv1.GET("/data-version", d.Get)

		routesAPIv1Import := routesAPIv1.Group("/import")
		{
			routesAPIv1Import.Use(middleware.BodyLimit("64M"))
			i := groupImport{cfg.Container}
			routesAPIv1Import.POST("", i.Import)
			routesAPIv1Import.POST("/forced", i.ImportForced)
			routesAPIv1Import.POST("/archive", i.ImportArchive)
			routesAPIv1Import.GET("/:run", i.Status)
		}

		routesAPIv1Category := routesAPIv1.Group("/categories")
		{
			cat := groupCategory{cfg.Container}
			routesAPIv1Category.GET("", cat.List)
			routesAPIv1Category.POST("", cat.Create)
			routesAPIv1Category.POST("/merge", cat.Merge)
			routesAPIv1Category.GET("/merge/candidates", cat.MergeCandidates)
			routesAPIv1Category.PATCH("/:id", cat.Update)
			routesAPIv1Category.DELETE("/:id", cat.Delete)
			routesAPIv1Category.GET("/:id/questions", cat.Questions)

			q := groupQuestion{cfg.Container}
			routesAPIv1Category.POST("/:id/questions", q.Add)
		}

		routesAPIv1Question := routesAPIv1.Group("/questions")
		{
			q := groupQuestion{cfg.Container}
			routesAPIv1Question.POST("/verify", q.Verify)
			routesAPIv1Question.GET("/:id", q.Show)
			routesAPIv1Question.PATCH("/:id", q.Update)
			routesAPIv1Question.DELETE("/:id", q.Delete)
		}

		routesAPIv1Pending := routesAPIv1.Group("/pending")
		{
			m := groupModeration{cfg.Container}
			routesAPIv1Pending.POST("", m.Submit)
			routesAPIv1Pending.GET("", m.List)
			routesAPIv1Pending.POST("/:id/approve", m.Approve)
			routesAPIv1Pending.POST("/:id/deny", m.Deny)
			routesAPIv1Pending.DELETE("/:id", m.Delete)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
