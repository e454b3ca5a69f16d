package config

const (
	// GormEngineMySQL selects the mysql driver.
	GormEngineMySQL = "mysql"
	// GormEnginePostgres selects the postgres driver.
	GormEnginePostgres = "postgres"
	// GormEngineSQLite selects the pure go sqlite driver. Name is used as file path.
	GormEngineSQLite = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
