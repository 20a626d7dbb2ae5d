package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	// Infraestrutura e utilitários
	"stockroom/config"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/notify"
	"stockroom/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"stockroom/internal/api/auth"
	"stockroom/internal/api/component"
	"stockroom/internal/api/request"
	"stockroom/internal/api/router"
	"stockroom/internal/api/usage"
	"stockroom/internal/repository/componentrepo"
	"stockroom/internal/repository/ledgerrepo"
	"stockroom/internal/repository/requestrepo"
	"stockroom/internal/repository/usagerepo"
	"stockroom/internal/service/authservice"
	"stockroom/internal/service/componentservice"
	"stockroom/internal/service/requestservice"
	"stockroom/internal/service/stockservice"
	"stockroom/internal/service/usageservice"
)

func main() {
	stdlog.Println("⚡ Inicializando serviço Stockroom...")
	// O .env é opcional: em contêiner as variáveis vêm do ambiente.
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		stdlog.Fatalf("❌ Erro de Configuração: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("❌ Erro de Configuração: %v", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "db_driver": cfg.DBDriver})

	// 1. Banco de Dados
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão com o banco estabelecida.", map[string]interface{}{"driver": cfg.DBDriver})

	// 2. Cache (Redis). Sem Redis o serviço segue sem cache, sem rate limit e sem eventos.
	var cacheClient cache.Client = cache.NoopClient{}
	var redisClient *cache.RedisClient
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			log.Warn("Redis indisponível, seguindo sem cache.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			defer redisClient.Close()
			cacheClient = redisClient
			log.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
		}
	}

	// 3. Métricas e notificações
	var m *metrics.Metrics
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		gatherer = prometheus.DefaultGatherer
	}
	notifier := buildNotifier(cfg, redisClient, log)
	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout)

	// 4. Injeção de dependências: Repository -> Service -> Handler
	ledgerRepo := ledgerrepo.NewLedgerRepository(db, cacheClient, cfg.DBTimeout, log)
	componentRepo := componentrepo.NewComponentRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	requestRepo := requestrepo.NewRequestRepository(db, cfg.DBTimeout, log)
	usageRepo := usagerepo.NewUsageRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	usageSvc := usageservice.NewService(usageRepo, m, log)
	ledger := stockservice.NewLedger(ledgerRepo, usageSvc, notifier, dispatcher, m, log)
	requestSvc := requestservice.NewService(ledgerRepo, ledger, usageSvc, requestRepo, notifier, dispatcher, m, log)
	componentSvc := componentservice.NewService(ledgerRepo, usageSvc, componentRepo, log)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	authSvc := authservice.NewService(cfg.AdminPasswordHash, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	handler := router.NewRouter(router.Handlers{
		Auth:      auth.NewHandler(authSvc, log),
		Component: component.NewHandler(componentSvc, ledger, log),
		Request:   request.NewHandler(requestSvc, log),
		Usage:     usage.NewHandler(usageSvc, log),
	}, router.Options{
		Tokens:          tokenSvc,
		Cache:           cacheClient,
		RateLimit:       cfg.RateLimitMaxRequests,
		RateLimitPeriod: cfg.RateLimitPeriod,
		Metrics:         m,
		Gatherer:        gatherer,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor Stockroom ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	// Aguarda as notificações ainda em envio (cada uma limitada a NOTIFY_TIMEOUT_SEC).
	dispatcher.Wait()

	log.Info("Servidor encerrado com sucesso.", nil)
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return database.NewSQLiteDB(cfg.SQLitePath)
	}
	return database.NewPgxDB(cfg.DatabaseURL)
}

// buildNotifier monta o fan-out: log sempre, Redis e Telegram quando configurados.
func buildNotifier(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) domain.Notifier {
	notifiers := notify.Multi{notify.NewLogNotifier(log)}

	if redisClient != nil && cfg.NotifyChannel != "" {
		notifiers = append(notifiers, notify.NewRedisNotifier(redisClient, cfg.NotifyChannel))
		log.Info("Eventos publicados no Redis.", map[string]interface{}{"channel": cfg.NotifyChannel})
	}

	if cfg.TelegramToken != "" {
		bot, err := notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			log.Warn("Notificações no Telegram desligadas.", map[string]interface{}{"error": err.Error()})
		} else {
			notifiers = append(notifiers, notify.NewTelegramNotifier(bot, cfg.TelegramChatID))
			log.Info("Notificações no Telegram ligadas.", map[string]interface{}{"bot": bot.Self.UserName})
		}
	}

	return notifiers
}
