package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"essay-hub/cmd/seed_initial_data/internal/seedmodels"
	"essay-hub/internal/config"
	"essay-hub/internal/database"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"
	"essay-hub/internal/repository"
	"essay-hub/internal/service"
	"essay-hub/internal/util"

	_ "github.com/godror/godror"
	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultSeedFile = "config/seed_data/demo.json"

// logNotifier stands in for the notification service; seeding runs without Mongo.
type logNotifier struct{ log *zap.Logger }

func (n logNotifier) Notify(_ context.Context, userID string, typ domain.NotificationType, _ map[string]interface{}) {
	n.log.Debug("Skipping notification during seed", zap.String("userID", userID), zap.String("type", string(typ)))
}

type seeder struct {
	log       *zap.Logger
	users     domain.UserRepository
	essays    domain.EssayRepository
	friends   service.FriendService
	idByEmail map[string]string
}

func main() {
	seedFile := flag.String("file", defaultSeedFile, "path of the JSON seed file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting demo data seeding")
	db, err := database.NewSQLXOracleDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	raw, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFile), zap.Error(err))
	}
	var data seedmodels.SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Loaded seed data", zap.Int("users", len(data.Users)), zap.Int("friendships", len(data.Friendships)))

	userRepo := repository.NewSQLXUserRepository(db)
	friendCfg := cfg.Friends
	friendCfg.AutoAcceptMutual = false
	s := &seeder{
		log:       log,
		users:     userRepo,
		essays:    repository.NewEssayDatabaseAdapter(db),
		friends:   service.NewFriendService(repository.NewSQLXFriendRepository(db), userRepo, repository.NewTransactionManagerAdapter(db), logNotifier{log: log}, friendCfg),
		idByEmail: make(map[string]string),
	}

	for _, u := range data.Users {
		if err := s.seedUser(ctx, u); err != nil {
			log.Error("Error seeding user", zap.String("email", u.Email), zap.Error(err))
		}
	}
	for _, pair := range data.Friendships {
		if err := s.seedFriendship(ctx, pair[0], pair[1]); err != nil {
			log.Error("Error seeding friendship", zap.String("a", pair[0]), zap.String("b", pair[1]), zap.Error(err))
		}
	}
	log.Info("Demo data seeding completed")
}

// seedUser creates the account if the email is unused. Essays are only added
// to accounts created in this run so reseeding does not duplicate them.
func (s *seeder) seedUser(ctx context.Context, su seedmodels.SeedUser) error {
	existing, err := s.users.GetUserByEmail(ctx, su.Email)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if existing != nil {
		s.log.Info("User exists", zap.String("email", existing.Email), zap.String("id", existing.ID))
		s.idByEmail[existing.Email] = existing.ID
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := domain.NewUser(su.Name, su.Email, string(hash))
	user.Location = su.Location
	user.Bio = su.Bio
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	s.idByEmail[user.Email] = user.ID
	s.log.Info("Created user", zap.String("id", user.ID), zap.String("email", user.Email))

	for _, se := range su.Essays {
		essay := &domain.Essay{
			UserID:      user.ID,
			Title:       se.Title,
			Content:     se.Content,
			ContentHash: util.ContentHash(se.Content),
			Status:      domain.EssayStatusEvaluating,
		}
		if err := s.essays.CreateEssay(ctx, essay); err != nil {
			return fmt.Errorf("create essay %q: %w", se.Title, err)
		}
		s.log.Info("Created essay", zap.String("id", essay.ID), zap.String("title", essay.Title))
	}
	return nil
}

// seedFriendship drives the normal request/accept flow between two seeded users.
func (s *seeder) seedFriendship(ctx context.Context, emailA, emailB string) error {
	a, b := s.idByEmail[emailA], s.idByEmail[emailB]
	if a == "" || b == "" {
		return fmt.Errorf("unknown user in pair")
	}

	result, err := s.friends.SendRequest(ctx, a, b)
	if domain.HasCode(err, domain.CodeAlreadyFriends) {
		s.log.Info("Already friends", zap.String("a", emailA), zap.String("b", emailB))
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.friends.AcceptRequest(ctx, result.Request.ID, b); err != nil {
		return err
	}
	s.log.Info("Created friendship", zap.String("a", emailA), zap.String("b", emailB))
	return nil
}
