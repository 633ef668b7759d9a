// Package jobs agrupa as tarefas periódicas da aplicação.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assinaturasAtivas = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assinaturas_ativas",
			Help: "Assinaturas dentro do período de vigência, por plano.",
		},
		[]string{"plano"},
	)

	assinaturasExpiradas = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assinaturas_expiradas",
			Help: "Assinaturas com data de fim no passado.",
		},
	)
)

// AssinaturaContador é o que os jobs precisam do repositório de assinaturas.
type AssinaturaContador interface {
	CountAtivasPorPlano(ctx context.Context, hoje time.Time) (map[string]int, error)
	CountExpiradas(ctx context.Context, hoje time.Time) (int, error)
}

type Jobs struct {
	assinaturas AssinaturaContador
	logger      *slog.Logger
	now         func() time.Time
	timeout     time.Duration
}

func NewJobs(assinaturas AssinaturaContador, logger *slog.Logger) *Jobs {
	return &Jobs{
		assinaturas: assinaturas,
		logger:      logger,
		now:         time.Now,
		timeout:     30 * time.Second,
	}
}

// RefreshAssinaturasAtivas recalcula os gauges de assinaturas a partir do banco.
func (j *Jobs) RefreshAssinaturasAtivas() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	hoje := j.now()
	porPlano, err := j.assinaturas.CountAtivasPorPlano(ctx, hoje)
	if err != nil {
		j.logger.Error("Falha ao contar assinaturas ativas", "error", err)
		return
	}

	// Planos sem assinatura ativa (ou removidos) não devem manter o valor antigo.
	assinaturasAtivas.Reset()
	total := 0
	for plano, n := range porPlano {
		assinaturasAtivas.WithLabelValues(plano).Set(float64(n))
		total += n
	}

	expiradas, err := j.assinaturas.CountExpiradas(ctx, hoje)
	if err != nil {
		j.logger.Error("Falha ao contar assinaturas expiradas", "error", err)
		return
	}
	assinaturasExpiradas.Set(float64(expiradas))

	j.logger.Info("📊 Métricas de assinaturas atualizadas", "ativas", total, "expiradas", expiradas)
}
