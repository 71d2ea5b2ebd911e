package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// Поддерживаемые драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	// ErrInvalidConfig возвращается при некорректной конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	UserService UserServiceConfig `toml:"userservice"`
	Booking     BookingConfig     `toml:"booking"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
	CORS        CORSConfig        `toml:"cors"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к БД
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	// AutoMigrate применяет встроенные миграции при старте
	AutoMigrate bool `toml:"auto_migrate"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL возвращает строку подключения в формате URL (для миграций)
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки метрик Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// UserServiceConfig настройки клиента UserService (таймаут в секундах)
type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// SlotConfig описание одного слота
type SlotConfig struct {
	StartHour int `toml:"start_hour"`
	EndHour   int `toml:"end_hour"`
	Capacity  int `toml:"capacity"`
}

// CompanyConfig дневной лимит компании
type CompanyConfig struct {
	ID         string `toml:"id"`
	DailyLimit int    `toml:"daily_limit"`
	Unlimited  bool   `toml:"unlimited"`
}

// BookingConfig каталог слотов и лимиты
type BookingConfig struct {
	UnitMinutes         int             `toml:"unit_minutes"`
	UserConcurrentLimit int             `toml:"user_concurrent_limit"`
	DaysAhead           int             `toml:"days_ahead"`
	Location            string          `toml:"location"`
	Slots               []SlotConfig    `toml:"slots"`
	Companies           []CompanyConfig `toml:"companies"`
}

// DomainSlots возвращает слоты в доменном представлении
func (c BookingConfig) DomainSlots() []domain.Slot {
	slots := make([]domain.Slot, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, domain.Slot{StartHour: s.StartHour, EndHour: s.EndHour, Capacity: s.Capacity})
	}
	return slots
}

// DomainLimits возвращает лимиты компаний в доменном представлении
func (c BookingConfig) DomainLimits() []domain.CompanyLimit {
	limits := make([]domain.CompanyLimit, 0, len(c.Companies))
	for _, cc := range c.Companies {
		limits = append(limits, domain.CompanyLimit{
			CompanyID:  cc.ID,
			DailyLimit: cc.DailyLimit,
			Unlimited:  cc.Unlimited,
		})
	}
	return limits
}

// LoadLocation возвращает часовой пояс каталога
func (c BookingConfig) LoadLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

// SchedulerConfig настройки периодических задач (интервал в секундах)
type SchedulerConfig struct {
	Enabled          bool `toml:"enabled"`
	SlotFillInterval int  `toml:"slot_fill_interval"`
}

// CORSConfig настройки CORS для PWA клиента
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Load загружает конфигурацию из TOML файла.
// Переменные окружения (и .env рядом с файлом) переопределяют секреты и адреса.
func Load(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("USERSERVICE_URL"); v != "" {
		cfg.UserService.URL = v
	}
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "carwash-service",
		},
		UserService: UserServiceConfig{
			Timeout: 5,
		},
		Booking: BookingConfig{
			UnitMinutes:         domain.DefaultUnitMinutes,
			UserConcurrentLimit: domain.DefaultUserConcurrentLimit,
			DaysAhead:           domain.DefaultDaysAhead,
		},
		Scheduler: SchedulerConfig{
			SlotFillInterval: 60,
		},
	}
}

// DefaultSlots наблюдаемая конфигурация слотов мойки
func DefaultSlots() []SlotConfig {
	return []SlotConfig{
		{StartHour: 8, EndHour: 11, Capacity: 12},
		{StartHour: 11, EndHour: 14, Capacity: 12},
		{StartHour: 14, EndHour: 17, Capacity: 11},
	}
}

// DefaultCompanies наблюдаемые лимиты компаний
func DefaultCompanies() []CompanyConfig {
	return []CompanyConfig{
		{ID: "carwash", Unlimited: true},
		{ID: "microsoft", DailyLimit: 14},
		{ID: "sap", DailyLimit: 16},
		{ID: "graphisoft", DailyLimit: 5},
	}
}

// Validate проверяет корректность конфигурации.
// Пустые списки слотов и компаний заполняются значениями по умолчанию.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}

	b := &c.Booking
	if b.UnitMinutes <= 0 {
		return fmt.Errorf("%w: booking.unit_minutes must be positive", ErrInvalidConfig)
	}
	if b.UserConcurrentLimit <= 0 {
		return fmt.Errorf("%w: booking.user_concurrent_limit must be positive", ErrInvalidConfig)
	}
	if b.DaysAhead <= 0 || b.DaysAhead > domain.MaxDaysAhead {
		return fmt.Errorf("%w: booking.days_ahead must be in 1..%d", ErrInvalidConfig, domain.MaxDaysAhead)
	}
	if _, err := b.LoadLocation(); err != nil {
		return fmt.Errorf("%w: booking.location: %v", ErrInvalidConfig, err)
	}

	if len(b.Slots) == 0 {
		b.Slots = DefaultSlots()
	}
	if len(b.Companies) == 0 {
		b.Companies = DefaultCompanies()
	}

	for i, s := range b.Slots {
		if s.StartHour < 0 || s.EndHour > 24 || s.StartHour >= s.EndHour {
			return fmt.Errorf("%w: slot %d-%d is inverted or out of day", ErrInvalidConfig, s.StartHour, s.EndHour)
		}
		if s.Capacity <= 0 {
			return fmt.Errorf("%w: slot %d-%d capacity must be positive", ErrInvalidConfig, s.StartHour, s.EndHour)
		}
		for _, other := range b.Slots[:i] {
			if s.StartHour < other.EndHour && other.StartHour < s.EndHour {
				return fmt.Errorf("%w: slot %d-%d overlaps slot %d-%d",
					ErrInvalidConfig, s.StartHour, s.EndHour, other.StartHour, other.EndHour)
			}
		}
	}

	seen := make(map[string]struct{}, len(b.Companies))
	for _, cc := range b.Companies {
		if cc.ID == "" {
			return fmt.Errorf("%w: company id is required", ErrInvalidConfig)
		}
		if _, ok := seen[cc.ID]; ok {
			return fmt.Errorf("%w: duplicate company id %q", ErrInvalidConfig, cc.ID)
		}
		seen[cc.ID] = struct{}{}
		if !cc.Unlimited && cc.DailyLimit <= 0 {
			return fmt.Errorf("%w: company %q daily_limit must be positive", ErrInvalidConfig, cc.ID)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("%w: metrics.path is required when metrics are enabled", ErrInvalidConfig)
	}
	if c.Scheduler.Enabled && c.Scheduler.SlotFillInterval <= 0 {
		return fmt.Errorf("%w: scheduler.slot_fill_interval must be positive", ErrInvalidConfig)
	}

	return nil
}
