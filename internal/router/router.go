package router

import (
	"time"

	"sistemaservicios/internal/config"
	"sistemaservicios/internal/handler"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/repository"
	"sistemaservicios/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators built in main that outlive the router.
type Deps struct {
	Servicios config.CatalogoServicios
	Kafka     *infra.KafkaPublisher // nil disables ledger events
	Actas     service.EncoladorActas
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	store := infra.NewFileStore(cfg.UploadsPath)

	// ── Repositories ─────────────────────────────────────────────────────────
	cajaRepo := repository.NewCajaMayorRepository(db)
	depositoRepo := repository.NewDepositoRepository(db)
	cuentaRepo := repository.NewCuentaBancariaRepository(db)
	pagoRepo := repository.NewPagoServicioRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	valeRepo := repository.NewValeRepository(db)
	cambioRepo := repository.NewCambioRepository(db)
	conteoRepo := repository.NewConteoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var eventos service.PublicadorEventos
	if deps.Kafka != nil {
		eventos = deps.Kafka
	}
	cajaSvc := service.NewCajaMayorService(cajaRepo, eventos)
	depositoSvc := service.NewDepositoService(depositoRepo, cuentaRepo, cajaRepo, cajaSvc)
	pagoSvc := service.NewPagoServicioService(pagoRepo, cajaRepo, cajaSvc, deps.Servicios)
	retiroSvc := service.NewRetiroService(movimientoRepo, cajaRepo, cajaSvc)
	valeSvc := service.NewValeService(valeRepo, cajaRepo, cajaSvc)
	cambioSvc := service.NewCambioService(cambioRepo, cajaRepo, cajaSvc)
	conteoSvc := service.NewConteoService(conteoRepo, cajaRepo, cajaSvc, deps.Actas)
	reporteSvc := service.NewReporteService(pagoRepo, movimientoRepo, depositoRepo, cajaRepo, deps.Servicios)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaMayorHandler(cajaSvc)
	depositosH := handler.NewDepositosHandler(depositoSvc, store)
	pagosH := handler.NewPagosServiciosHandler(pagoSvc, store)
	retirosH := handler.NewRetirosHandler(retiroSvc)
	valesH := handler.NewValesHandler(valeSvc)
	cambiosH := handler.NewCambiosHandler(cambioSvc)
	conteosH := handler.NewConteosHandler(conteoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Kafka))

	todos := middleware.RequireRole(middleware.RolOperador, middleware.RolTesorero, middleware.RolAdministrador)
	tesoreria := middleware.RequireRole(middleware.RolTesorero, middleware.RolAdministrador)

	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	{
		cm := api.Group("/caja_mayor_movimientos")
		{
			cm.GET("", todos, cajaH.Listar)
			cm.GET("/saldos", todos, cajaH.Saldos)
			cm.GET("/verificar/:moneda", tesoreria, cajaH.VerificarContinuidad)
			cm.GET("/:id", todos, cajaH.ObtenerPorID)
			cm.POST("", tesoreria, cajaH.RegistrarManual)
		}

		dep := api.Group("/depositos-bancarios")
		{
			dep.GET("", todos, depositosH.Listar)
			dep.GET("/:id", todos, depositosH.ObtenerPorID)
			dep.GET("/:id/comprobante", todos, depositosH.DescargarComprobante)
			dep.POST("", tesoreria, depositosH.Crear)
			dep.PUT("/:id", tesoreria, depositosH.Actualizar)
			dep.POST("/:id/cancelar", tesoreria, depositosH.Cancelar)
		}

		pagos := api.Group("/pagos-servicios")
		{
			pagos.GET("", todos, pagosH.Listar)
			pagos.GET("/:id", todos, pagosH.ObtenerPorID)
			pagos.POST("", todos, pagosH.Crear)
			pagos.PATCH("/:id/estado", tesoreria, pagosH.CambiarEstado)
			pagos.POST("/:id/anular", tesoreria, pagosH.Anular)
		}

		retiros := api.Group("/retiros")
		{
			retiros.GET("", todos, retirosH.Listar)
			retiros.POST("", todos, retirosH.Crear)
			retiros.POST("/:id/recibir", tesoreria, retirosH.Recibir)
			retiros.POST("/:id/rechazar", tesoreria, retirosH.Rechazar)
			retiros.POST("/:id/devolver", tesoreria, retirosH.Devolver)
		}

		vales := api.Group("/vales", tesoreria)
		{
			vales.GET("", valesH.Listar)
			vales.GET("/:id", valesH.ObtenerPorID)
			vales.POST("", valesH.Emitir)
			vales.POST("/:id/cobrar", valesH.Cobrar)
			vales.POST("/:id/cancelar", valesH.Cancelar)
		}

		cambios := api.Group("/cambios", tesoreria)
		{
			cambios.GET("", cambiosH.Listar)
			cambios.POST("", cambiosH.Registrar)
			cambios.POST("/:id/anular", cambiosH.Anular)
		}

		conteos := api.Group("/conteos", tesoreria)
		{
			conteos.GET("", conteosH.Listar)
			conteos.GET("/:id", conteosH.ObtenerPorID)
			conteos.POST("", conteosH.Crear)
		}

		// One balance route per collection service.
		for _, codigo := range []string{"weno-gs", "wepa-usd", "aquipago"} {
			api.GET("/"+codigo, tesoreria, reportesH.BalanceServicio(codigo))
		}
		api.GET("/balance", tesoreria, reportesH.Balance)
	}

	// Uploaded receipts are served to any authenticated user at the stored
	// ruta_comprobante.
	montarUploads(r, store, middleware.JWTAuth(cfg.JWTSecret), todos)

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func montarUploads(r *gin.Engine, store *infra.FileStore, guardas ...gin.HandlerFunc) {
	r.Group("/uploads", guardas...).Static("/", store.Base())
}
