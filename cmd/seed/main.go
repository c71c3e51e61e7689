// cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go_5_skill_sync/internal/config"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	flag "github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

// seedCard はデモ用カードの元データです
type seedCard struct {
	Question string
	Answer   string
	Tags     []string
}

var demoCards = []seedCard{
	{"日本の首都は？", "東京", []string{"geography"}},
	{"フランスの首都は？", "パリ", []string{"geography"}},
	{"水の化学式は？", "H2O", []string{"science"}},
	{"光の速さはおよそ秒速何km？", "30万km", []string{"science"}},
	{"Go の作者の一人は？", "Rob Pike", []string{"programming"}},
	{"HTTP の 404 の意味は？", "Not Found", []string{"programming"}},
	{"1バイトは何ビット？", "8", []string{"programming"}},
	{"富士山の標高は？", "3776m", []string{"geography"}},
	{"円周率の最初の3桁は？", "3.14", []string{"math"}},
	{"12の階乗の末尾の0の数は？", "2", []string{"math"}},
	{"太陽系で最大の惑星は？", "木星", []string{"science"}},
	{"SQL で行を追加する文は？", "INSERT", []string{"programming"}},
}

// PostgreSQL にデモ用のユーザー・グループ・セット・カードを投入します。
// ID は名前から決まるので何度実行しても重複しません。migrate の後に実行してください。
func main() {
	configDir := flag.String("config-dir", "configs", "config.yaml を置いたディレクトリ")
	email := flag.String("email", "demo@example.com", "デモユーザーのメールアドレス")
	password := flag.String("password", "password123", "デモユーザーのパスワード")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Database.Driver != "postgres" {
		logger.Error("Seed supports postgres only", slog.String("driver", cfg.Database.Driver))
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to open database connection", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := seed(ctx, db, *email, *password); err != nil {
		logger.Error("Seed failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Seed completed", slog.String("email", *email), slog.Int("cards", len(demoCards)))
}

func seedID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("skillsync/seed/"+name))
}

func seed(ctx context.Context, db *sql.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	userID := seedID("user/" + email)
	groupID := seedID("group/demo")
	setID := seedID("set/demo")

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, xp, level, streak_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 1, 0, $5, $5)
		ON CONFLICT (email) DO NOTHING`,
		userID, email, string(hash), "demo", now); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	// 既存ユーザーがいればそのIDを使う
	if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID); err != nil {
		return fmt.Errorf("select user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO study_groups (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO NOTHING`,
		groupID, "デモグループ", userID, now); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO group_memberships (id, group_id, user_id, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'OWNER', 'ACTIVE', $4, $4)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		seedID("membership/"+email), groupID, userID, now); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO flashcard_sets (id, group_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO NOTHING`,
		setID, groupID, "一般常識", "デモ用のカードセット", now); err != nil {
		return fmt.Errorf("insert set: %w", err)
	}

	for i, c := range demoCards {
		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		// created_at をずらして作成順を固定する
		createdAt := now.Add(time.Duration(i) * time.Second)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flashcards (id, set_id, group_id, created_by_id, question, answer, explanation, difficulty, tags, usage_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, '', 3, $7, 0, $8, $8)
			ON CONFLICT (id) DO NOTHING`,
			seedID(fmt.Sprintf("card/%d", i)), setID, groupID, userID, c.Question, c.Answer, string(tags), createdAt); err != nil {
			return fmt.Errorf("insert flashcard %d: %w", i, err)
		}
	}

	return tx.Commit()
}
