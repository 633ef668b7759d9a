// Comando seed popula o banco com planos, produtos, usuários de exemplo e o admin.
// Pode ser executado quantas vezes for preciso: nada é duplicado.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/willjrcristo/go-assinaturas/internal/config"
	"github.com/willjrcristo/go-assinaturas/internal/database"
	"github.com/willjrcristo/go-assinaturas/internal/media"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Erro ao carregar a configuração", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Erro ao inicializar o banco de dados", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	seeder := service.NewSeeder(
		repository.NewSQLiteRepository(db),
		repository.NewPlanoRepository(db),
		repository.NewProdutoRepository(db),
		repository.NewAssinaturaRepository(db),
		media.NewStorage(cfg.MediaRoot),
	)

	rep, err := seeder.Run(context.Background(), service.DefaultSeedData())
	if err != nil {
		slog.Error("❌ Carga de dados interrompida", "error", err)
		db.Close()
		os.Exit(1)
	}

	slog.Info("🎉 Carga de dados concluída.",
		"planos_criados", rep.PlanosCriados,
		"planos_atualizados", rep.PlanosAtualizados,
		"produtos_criados", rep.ProdutosCriados,
		"produtos_atualizados", rep.ProdutosAtualizados,
		"usuarios_criados", rep.UsuariosCriados,
		"assinaturas_criadas", rep.AssinaturasCriadas,
		"assinaturas_atualizadas", rep.AssinaturasAtualizadas,
		"admin_criado", rep.AdminCriado,
	)
}
