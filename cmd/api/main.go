package main

import (
	"time"

	"swiftshop/internal/config"
	"swiftshop/internal/domain/model"
	"swiftshop/internal/handler"
	"swiftshop/internal/infra/db"
	infraRepo "swiftshop/internal/infra/repository"
	"swiftshop/internal/server"
	"swiftshop/internal/usecase"
	auth "swiftshop/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもよい（コンテナでは環境変数が直接入る）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Cart{},
		&model.CartItem{},
		&model.Receipt{},
		&model.ReceiptItem{},
		&model.StockAdjustment{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	receiptRepo := infraRepo.NewReceiptGormRepository(gormDB)
	receiptItemRepo := infraRepo.NewReceiptItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	catalogUC := usecase.NewCatalogUsecase(itemRepo, txManager)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, itemRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, idGen, clock)
	receiptUC := usecase.NewReceiptUsecase(receiptRepo, receiptItemRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(registerUC, loginUC),
		Item:      handler.NewItemHandler(catalogUC),
		AdminItem: handler.NewAdminItemHandler(catalogUC),
		Cart:      handler.NewCartHandler(cartUC),
		Checkout:  handler.NewCheckoutHandler(checkoutUC),
		Receipt:   handler.NewReceiptHandler(receiptUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, handlers); err != nil {
		panic(err)
	}
}
