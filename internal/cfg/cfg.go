package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

type Config struct {
	Http    *HTTPConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	Minio   *MinIOCfg
	Session *SessionCfg
	Sync    *SyncCfg
	Shops   *ShopsCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	KpiTTL      time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет зеркала изображений
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	MirrorLimit       int // Лимит одновременных загрузок зеркала
}

type SessionCfg struct {
	Secret               string
	TTL                  time.Duration
	OperatorUser         string
	OperatorPasswordHash string // bcrypt-хэш пароля оператора
}

type SyncCfg struct {
	PageLimit         int           // размер страницы при выгрузке каталога
	MaxRetries        int           // попыток на один запрос выгрузки
	CallTimeout       time.Duration // таймаут одного запроса к API магазина
	MaxParallelShops  int
	Cron              string // расписание фоновой синхронизации, пусто = выключено
	ForcedCloseWindow time.Duration
}

// ShopCfg — один магазин вместе с его учётными данными API.
type ShopCfg struct {
	TLD       string
	Name      string
	Role      domain.ShopRole
	Languages []domain.ShopLanguage
	APIKey    string
	APISecret string
}

// ShopsCfg — исходный магазин, целевые магазины и базовый URL API.
type ShopsCfg struct {
	APIBase string
	Source  ShopCfg
	Targets []ShopCfg
}

// All возвращает исходный и целевые магазины одним срезом.
func (s *ShopsCfg) All() []ShopCfg {
	all := make([]ShopCfg, 0, len(s.Targets)+1)
	all = append(all, s.Source)
	all = append(all, s.Targets...)

	return all
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	session, err := loadSessionCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sync, err := loadSyncCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	shops, err := loadShopsCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:    http,
		Db:      db,
		Redis:   redis,
		Kafka:   kafka,
		Minio:   minio,
		Session: session,
		Sync:    sync,
		Shops:   shops,
	}, nil
}

// loadShopsCfg собирает исходный и целевые магазины и проверяет,
// что для каждого настроенного магазина заданы учётные данные API.
// Отсутствие учётных данных — фатальная ошибка старта.
func loadShopsCfg() (*ShopsCfg, error) {
	const defaultAPIBase = "https://api.webshopapp.com"

	sourceTLD := strings.ToLower(strings.TrimSpace(getEnv("SOURCE_SHOP")))
	if sourceTLD == "" {
		return nil, fmt.Errorf("SOURCE_SHOP environment variable is required")
	}

	source, err := loadShop(sourceTLD, domain.RoleSource)
	if err != nil {
		return nil, err
	}

	targetStr := getEnv("TARGET_SHOPS")
	if targetStr == "" {
		return nil, fmt.Errorf("TARGET_SHOPS environment variable is required")
	}

	var targets []ShopCfg
	for _, tld := range strings.Split(targetStr, ",") {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if tld == "" {
			continue
		}
		if tld == sourceTLD {
			return nil, fmt.Errorf("target shop %q duplicates the source shop", tld)
		}

		target, err := loadShop(tld, domain.RoleTarget)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *target)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("TARGET_SHOPS must list at least one shop")
	}

	return &ShopsCfg{
		APIBase: getEnvOrDefault("LIGHTSPEED_API_BASE", defaultAPIBase),
		Source:  *source,
		Targets: targets,
	}, nil
}

// loadShop читает имя, языки и учётные данные одного магазина по его TLD.
func loadShop(tld string, role domain.ShopRole) (*ShopCfg, error) {
	upper := strings.ToUpper(tld)

	apiKey := getEnv("LIGHTSPEED_API_KEY_" + upper)
	apiSecret := getEnv("LIGHTSPEED_API_SECRET_" + upper)
	if apiKey == "" || apiSecret == "" {
		return nil, e.Wrap(fmt.Sprintf("shop %s", tld), e.ErrShopCredsMissing)
	}

	languages, err := parseLanguages(getEnvOrDefault("SHOP_LANGUAGES_"+upper, tld))
	if err != nil {
		return nil, e.Wrap(fmt.Sprintf("SHOP_LANGUAGES_%s", upper), err)
	}

	return &ShopCfg{
		TLD:       tld,
		Name:      getEnvOrDefault("SHOP_NAME_"+upper, "Shop ."+tld),
		Role:      role,
		Languages: languages,
		APIKey:    apiKey,
		APISecret: apiSecret,
	}, nil
}

// parseLanguages разбирает список языков вида "nl*,fr":
// звёздочка помечает язык по умолчанию, без пометки им становится первый.
func parseLanguages(s string) ([]domain.ShopLanguage, error) {
	parts := strings.Split(s, ",")
	languages := make([]domain.ShopLanguage, 0, len(parts))
	hasDefault := false

	for _, part := range parts {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" {
			continue
		}

		isDefault := strings.HasSuffix(code, "*")
		code = strings.TrimSuffix(code, "*")
		if isDefault && hasDefault {
			return nil, fmt.Errorf("more than one default language")
		}
		hasDefault = hasDefault || isDefault

		languages = append(languages, domain.ShopLanguage{
			Code:      code,
			IsDefault: isDefault,
			IsActive:  true,
		})
	}

	if len(languages) == 0 {
		return nil, fmt.Errorf("language list is empty")
	}
	if !hasDefault {
		languages[0].IsDefault = true
	}

	return languages, nil
}

func loadSessionCfg() (*SessionCfg, error) {
	const (
		defaultTTL          = 12 * time.Hour
		defaultOperatorUser = "admin"
	)

	secret := getEnv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	passwordHash := getEnv("OPERATOR_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, fmt.Errorf("OPERATOR_PASSWORD_HASH environment variable is required")
	}

	ttl, err := parseDurationEnv("SESSION_TTL", defaultTTL)
	if err != nil {
		return nil, e.Wrap("SESSION_TTL", err)
	}

	return &SessionCfg{
		Secret:               secret,
		TTL:                  ttl,
		OperatorUser:         getEnvOrDefault("OPERATOR_USER", defaultOperatorUser),
		OperatorPasswordHash: passwordHash,
	}, nil
}

func loadSyncCfg() (*SyncCfg, error) {
	const (
		defaultPageLimit         = 250
		defaultMaxRetries        = 3
		defaultCallTimeout       = 30 * time.Second
		defaultMaxParallelShops  = 4
		defaultForcedCloseWindow = 2 * time.Second
	)

	pageLimit, err := parseIntEnv("SYNC_PAGE_LIMIT", defaultPageLimit)
	if err != nil {
		return nil, e.Wrap("SYNC_PAGE_LIMIT", err)
	}

	maxRetries, err := parseIntEnv("SYNC_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("SYNC_MAX_RETRIES", err)
	}

	callTimeout, err := parseDurationEnv("SYNC_CALL_TIMEOUT", defaultCallTimeout)
	if err != nil {
		return nil, e.Wrap("SYNC_CALL_TIMEOUT", err)
	}

	maxParallelShops, err := parseIntEnv("SYNC_MAX_PARALLEL_SHOPS", defaultMaxParallelShops)
	if err != nil {
		return nil, e.Wrap("SYNC_MAX_PARALLEL_SHOPS", err)
	}

	forcedCloseWindow, err := parseDurationEnv("FORCED_CLOSE_WINDOW", defaultForcedCloseWindow)
	if err != nil {
		return nil, e.Wrap("FORCED_CLOSE_WINDOW", err)
	}

	return &SyncCfg{
		PageLimit:         pageLimit,
		MaxRetries:        maxRetries,
		CallTimeout:       callTimeout,
		MaxParallelShops:  maxParallelShops,
		Cron:              getEnv("SYNC_CRON"),
		ForcedCloseWindow: forcedCloseWindow,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL      = false
		defaultEndpoint    = "minio:9000"
		defaultMirrorLimit = 4
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	mirrorLimit, err := parseIntEnv("MIRROR_LIMIT", defaultMirrorLimit)
	if err != nil {
		return nil, e.Wrap("MIRROR_LIMIT", err)
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		MirrorLimit:       mirrorLimit,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultKpiTTL       = time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	kpiTTL, err := parseDurationEnv("KPI_TTL", defaultKpiTTL)
	if err != nil {
		log.Errorf(err, "invalid KPI_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		KpiTTL:      kpiTTL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	return strconv.Atoi(v)
}
