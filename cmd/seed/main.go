package main

import (
	"fmt"
	"log"

	"github.com/XTeam-Pro/AIMLM/internal/config"
	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 公司账户：购货款的公司份额最终汇入该用户的钱包
	companyEmail := cfg.MLM.CompanyUserEmail
	if companyEmail == "" {
		companyEmail = "company@aimlm.local"
	}
	seedCompanyAccount(companyEmail, stdLog)

	// 商品（价格与 PV 独立）
	products := []models.Product{
		{
			Slug:        "starter-pack",
			Name:        "Starter Pack",
			Description: "入门套装：基础产品组合，适合新注册经销商的首单。",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(120.00)),
			PVValue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(100.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1556228720-195a672e8a03?w=800",
			}),
			Tags:      models.StringArray([]string{"Starter", "Bundle"}),
			IsActive:  true,
			SortOrder: 300,
		},
		{
			Slug:        "wellness-essentials",
			Name:        "Wellness Essentials",
			Description: "日常健康系列：维生素与矿物质补充组合。",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(260.00)),
			PVValue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(220.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1505751172876-fa1923c5c528?w=800",
			}),
			Tags:      models.StringArray([]string{"Wellness", "Daily"}),
			IsActive:  true,
			SortOrder: 280,
		},
		{
			Slug:        "premium-collection",
			Name:        "Premium Collection",
			Description: "高阶旗舰组合：面向业务中心考核的大单产品。",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(1200.00)),
			PVValue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(1000.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1512436991641-6745cdb1723f?w=800",
			}),
			Tags:      models.StringArray([]string{"Premium", "Flagship"}),
			IsActive:  true,
			SortOrder: 260,
		},
		{
			Slug:        "sample-kit",
			Name:        "Sample Kit",
			Description: "试用装：零售演示用小样，不计入 PV。",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(25.00)),
			PVValue:     models.NewMoneyFromDecimal(decimal.Zero),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1522335789203-aabd1fc54bc9?w=800",
			}),
			Tags:      models.StringArray([]string{"Sample", "Retail"}),
			IsActive:  true,
			SortOrder: 240,
		},
		{
			Slug:        "legacy-bundle",
			Name:        "Legacy Bundle",
			Description: "停售产品：仅用于后台下架状态演示。",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(80.00)),
			PVValue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(60.00)),
			Tags:        models.StringArray([]string{"Legacy"}),
			IsActive:    false,
			SortOrder:   0,
		},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.PriceAmount = prod.PriceAmount
			existing.PVValue = prod.PVValue
			existing.Images = prod.Images
			existing.Tags = prod.Tags
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 世代奖金矩阵：等级越高可领的代数越深，比例逐代递减
	matrixPlans := map[string][]float64{
		constants.RankOneCarat:   {5},
		constants.RankTwoCarat:   {5, 4},
		constants.RankThreeCarat: {5, 4, 3},
		constants.RankCrystal:    {5, 4, 3, 2},
		constants.RankRubin:      {5, 4, 3, 2, 1},
		constants.RankSapphire:   {5, 4, 3, 2, 1, 1, 1},
	}

	matrixCount := 0
	for rank, percents := range matrixPlans {
		for i, percent := range percents {
			generation := i + 1
			entry := models.GenerationBonusMatrix{
				Rank:            rank,
				Generation:      generation,
				BonusPercentage: models.NewMoneyFromDecimal(decimal.NewFromFloat(percent)),
			}
			var existing models.GenerationBonusMatrix
			if err := models.DB.Where("rank = ? AND generation = ?", rank, generation).First(&existing).Error; err != nil {
				if err := models.DB.Create(&entry).Error; err != nil {
					stdLog.Printf("Failed to create matrix entry %s/%d: %v", rank, generation, err)
					continue
				}
			} else {
				existing.BonusPercentage = entry.BonusPercentage
				if err := models.DB.Save(&existing).Error; err != nil {
					stdLog.Printf("Failed to update matrix entry %s/%d: %v", rank, generation, err)
					continue
				}
			}
			matrixCount++
		}
	}
	stdLog.Printf("Seeded generation bonus matrix: %d entries", matrixCount)

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Printf("- Company account: %s\n", companyEmail)
	fmt.Printf("- %d Products\n", len(products))
	fmt.Printf("- %d Generation bonus matrix entries\n", matrixCount)
}

// seedCompanyAccount 创建公司用户、档案与钱包（幂等）
func seedCompanyAccount(email string, stdLog *log.Logger) {
	var user models.User
	if err := models.DB.Where("email = ?", email).First(&user).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("company-change-me"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash company password: %v", err)
		}
		user = models.User{
			Email:        email,
			PasswordHash: string(hash),
			DisplayName:  "Company",
			ReferralCode: "COMPANY1",
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Fatalf("Failed to create company user: %v", err)
		}
		stdLog.Printf("Created company user: %s", email)
	} else {
		stdLog.Printf("Company user already exists: %s", email)
	}

	var profile models.MLMProfile
	if err := models.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		profile = models.MLMProfile{
			UserID:       user.ID,
			ContractType: constants.ContractTypeDistributor,
			CurrentRank:  constants.RankSapphire,
			CurrentClub:  constants.ClubPremier,
		}
		if err := models.DB.Create(&profile).Error; err != nil {
			stdLog.Printf("Failed to create company profile: %v", err)
		} else {
			stdLog.Printf("Created company profile for user %d", user.ID)
		}
	}

	var account models.WalletAccount
	if err := models.DB.Where("user_id = ?", user.ID).First(&account).Error; err != nil {
		account = models.WalletAccount{
			UserID:   user.ID,
			Currency: constants.SiteCurrencyDefault,
		}
		if err := models.DB.Create(&account).Error; err != nil {
			stdLog.Printf("Failed to create company wallet: %v", err)
		} else {
			stdLog.Printf("Created company wallet for user %d", user.ID)
		}
	}
}
