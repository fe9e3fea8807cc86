package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"resort-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// SeedDatabase creates the default staff account and a small demo catalog
// so a fresh install is bookable out of the box. Existing rows win.
func SeedDatabase() {
	// ---------------- Staff ----------------
	var staffCount int64
	DB.Model(&models.Staff{}).Count(&staffCount)
	if staffCount == 0 {
		password := envOrDefault("STAFF_DEFAULT_PASSWORD", "reception123")
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default staff password: %v", err)
		} else {
			staff := models.Staff{
				FullName: "Front Desk",
				Username: envOrDefault("STAFF_DEFAULT_USERNAME", "reception@resort.local"),
				Password: string(hash),
			}
			if err := DB.Create(&staff).Error; err != nil {
				log.Printf("warning: failed to create default staff: %v", err)
			} else {
				log.Println("Default staff seeded")
			}
		}
	}

	// ---------------- Rooms ----------------
	var roomCount int64
	DB.Model(&models.Room{}).Count(&roomCount)
	if roomCount == 0 {
		rooms := []models.Room{
			{
				Slug:             "garden-bungalow",
				Title:            "Garden Bungalow",
				PricePerNight:    500000,
				OccupancyOptions: datatypes.JSON([]byte(`["2 adults","2 adults, 1 child"]`)),
				Description:      "Ground-floor bungalow facing the garden",
			},
			{
				Slug:             "sea-view-deluxe",
				Title:            "Sea View Deluxe",
				PricePerNight:    800000,
				OccupancyOptions: datatypes.JSON([]byte(`["2 adults, 2 children","3 adults"]`)),
				Description:      "Upper-floor deluxe room with a sea view balcony",
			},
			{
				Slug:             "family-suite",
				Title:            "Family Suite",
				PricePerNight:    1200000,
				OccupancyOptions: datatypes.JSON([]byte(`["4 adults, 2 children"]`)),
				Description:      "Two connecting bedrooms with a shared living area",
			},
		}
		if err := DB.Create(&rooms).Error; err != nil {
			log.Printf("warning: failed to seed rooms: %v", err)
		} else {
			log.Println("Rooms seeded")

			// One bundled offer spanning the first two rooms.
			offer := models.Offer{
				Slug:        "honeymoon-bundle",
				Title:       "Honeymoon Bundle",
				Price:       1100000,
				Description: "Garden Bungalow plus Sea View Deluxe, booked together",
				Rooms: []models.OfferRoom{
					{RoomID: rooms[0].ID},
					{RoomID: rooms[1].ID},
				},
			}
			if err := DB.Create(&offer).Error; err != nil {
				log.Printf("warning: failed to seed offer: %v", err)
			} else {
				log.Println("Offers seeded")
			}
		}
	}

	// ---------------- Services ----------------
	var svcCount int64
	DB.Model(&models.CatalogService{}).Count(&svcCount)
	if svcCount == 0 {
		svcs := []models.CatalogService{
			{Slug: "airport-transfer", Title: "Airport Transfer", UnitPrice: 350000},
			{Slug: "spa-session", Title: "Spa Session", UnitPrice: 200000},
			{Slug: "seafood-dinner", Title: "Seafood Dinner Set", UnitPrice: 450000},
		}
		if err := DB.Create(&svcs).Error; err != nil {
			log.Printf("warning: failed to seed services: %v", err)
		} else {
			log.Println("Services seeded")
		}
	}
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "resort_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// Parent tables before children.
	if err := DB.AutoMigrate(
		&models.Staff{},
		&models.Room{},
		&models.Offer{},
		&models.OfferRoom{},
		&models.CatalogService{},
		&models.Invoice{},
		&models.BookedRoom{},
		&models.BookedService{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
