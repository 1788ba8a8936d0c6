package service

import (
	"context"
	"fmt"
	"time"

	"sistemaservicios/internal/config"
	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/shopspring/decimal"
)

// Payment states that count as money collected for a service.
var estadosPagoVigentes = []model.EstadoPago{model.PagoPendiente, model.PagoProcesado}

type ReporteService interface {
	// BalanceServicio returns what is still owed to the bank account of a
	// collection service: pagos − retiros − depósitos over [desde, hasta].
	BalanceServicio(ctx context.Context, servicio, desde, hasta string) (*dto.BalanceServicioResponse, error)
	Balance(ctx context.Context, desde, hasta string) (*dto.BalanceResponse, error)
}

type reporteService struct {
	pagos     repository.PagoServicioRepository
	retiros   repository.MovimientoRepository
	depositos repository.DepositoRepository
	cajaRepo  repository.CajaMayorRepository
	servicios config.CatalogoServicios
}

func NewReporteService(
	pagos repository.PagoServicioRepository,
	retiros repository.MovimientoRepository,
	depositos repository.DepositoRepository,
	cajaRepo repository.CajaMayorRepository,
	servicios config.CatalogoServicios,
) ReporteService {
	return &reporteService{pagos: pagos, retiros: retiros, depositos: depositos, cajaRepo: cajaRepo, servicios: servicios}
}

func (s *reporteService) BalanceServicio(ctx context.Context, servicio, desde, hasta string) (*dto.BalanceServicioResponse, error) {
	sv, ok := s.servicios.Buscar(servicio)
	if !ok {
		return nil, noEncontrado(fmt.Sprintf("servicio %q no configurado", servicio))
	}
	desde, hasta = periodoPorDefecto(desde, hasta)
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}

	totalPagos, err := s.pagos.SumPorServicio(ctx, sv.Codigo, estadosPagoVigentes, rango)
	if err != nil {
		return nil, fmt.Errorf("sumar pagos de %s: %w", sv.Codigo, err)
	}
	totalRetiros, err := s.retiros.SumRetirosPorServicio(ctx, sv.Codigo, rango)
	if err != nil {
		return nil, fmt.Errorf("sumar retiros de %s: %w", sv.Codigo, err)
	}
	totalDepositos, err := s.depositos.SumNoCancelados(ctx, sv.CuentaBancariaID, rango)
	if err != nil {
		return nil, fmt.Errorf("sumar depósitos de %s: %w", sv.Codigo, err)
	}

	return &dto.BalanceServicioResponse{
		Servicio:         sv.Codigo,
		Nombre:           sv.Nombre,
		Moneda:           string(sv.Moneda),
		CuentaBancariaID: sv.CuentaBancariaID.String(),
		Desde:            desde,
		Hasta:            hasta,
		TotalPagos:       totalPagos,
		TotalRetiros:     totalRetiros,
		TotalDepositos:   totalDepositos,
		TotalADepositar:  totalPagos.Sub(totalRetiros).Sub(totalDepositos),
	}, nil
}

func (s *reporteService) Balance(ctx context.Context, desde, hasta string) (*dto.BalanceResponse, error) {
	desde, hasta = periodoPorDefecto(desde, hasta)
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}

	resp := &dto.BalanceResponse{Desde: desde, Hasta: hasta}
	for _, m := range model.Monedas {
		ledger, _ := m.Ledger()
		tot, err := s.cajaRepo.Totales(ctx, ledger, rango)
		if err != nil {
			return nil, err
		}
		ultimo, err := s.cajaRepo.Ultimo(ctx, nil, ledger)
		if err != nil {
			return nil, err
		}
		saldo := decimal.Zero
		if ultimo != nil {
			saldo = ultimo.SaldoActual
		}
		resp.Monedas = append(resp.Monedas, dto.BalanceMonedaResponse{
			Moneda:              string(m),
			SaldoActual:         saldo,
			TotalIngresos:       tot.Ingresos,
			TotalEgresos:        tot.Egresos,
			CantidadMovimientos: tot.Cantidad,
		})
	}
	return resp, nil
}

// periodoPorDefecto fills empty bounds with the current month up to today.
func periodoPorDefecto(desde, hasta string) (string, string) {
	hoy := ahora()
	if desde == "" {
		desde = time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, time.UTC).Format(formatoFecha)
	}
	if hasta == "" {
		hasta = hoy.Format(formatoFecha)
	}
	return desde, hasta
}
