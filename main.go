package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"panel-tickets/cooldown"
	"panel-tickets/directory"
	"panel-tickets/gate"
	"panel-tickets/handlers/commands"
	"panel-tickets/handlers/msgcomponent"
	"panel-tickets/ledger"
	"panel-tickets/logging"
	"panel-tickets/panels"
	"panel-tickets/setup"
	"panel-tickets/state"
	"panel-tickets/tickets"
	"panel-tickets/types"
	"panel-tickets/utils"
	"panel-tickets/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/infinitybotlist/eureka/proxy"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Gates outlive the process when redis is configured
const gateTTL = 90 * 24 * time.Hour

var (
	config *types.Config

	secrets *types.Secrets

	discord *discordgo.Session

	pool *pgxpool.Pool

	rediscli *redis.Client

	ctx = context.Background()

	logger *zap.Logger

	st *state.State
)

var (
	configPath  string
	secretsPath string
	runSetup    bool
)

func init() {
	pflag.StringVar(&configPath, "config", "config.yaml", "path to the bot config")
	pflag.StringVar(&secretsPath, "secrets", "secrets.yaml", "path to the bot secrets")
	pflag.BoolVar(&runSetup, "setup", false, "interactively write a config and exit")
}

func wizard() {
	cfg, err := setup.New(os.Stdin, os.Stdout).Run()

	if err != nil {
		if errors.Is(err, setup.ErrTooManyAttempts) {
			os.Stderr.WriteString("Setup aborted: " + err.Error() + "\n")
			os.Exit(1)
		}
		panic(err)
	}

	err = setup.Write(configPath, cfg)

	if err != nil {
		panic(err)
	}

	os.Stdout.WriteString("Config written to " + configPath + "\n")
}

func main() {
	pflag.Parse()

	if runSetup {
		wizard()
		return
	}

	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	var err error

	config, err = types.LoadConfig(configPath)

	if err != nil {
		panic(err)
	}

	secrets, err = types.LoadSecrets(secretsPath)

	if err != nil {
		panic(err)
	}

	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		secrets.Token = token
	}

	if secrets.Token == "" {
		panic("no bot token, set DISCORD_BOT_TOKEN or token in " + secretsPath)
	}

	logger = logging.New(config.Logging)
	defer logger.Sync()

	var ledg ledger.Ledger = ledger.Nop{}

	if config.Database.Postgres != "" {
		pool, err = pgxpool.New(ctx, config.Database.Postgres)

		if err != nil {
			panic(err)
		}

		pg := ledger.NewPostgres(pool)

		err = pg.Migrate(ctx)

		if err != nil {
			panic(err)
		}

		ledg = pg
	}

	window := time.Duration(config.Tickets.CooldownSeconds) * time.Second

	var limiter cooldown.Limiter = cooldown.NewMemory(window)
	var gates gate.Store = gate.NewMemoryStore()

	if config.Database.Redis != "" {
		rOptions, err := redis.ParseURL(config.Database.Redis)

		if err != nil {
			panic(err)
		}

		rediscli = redis.NewClient(rOptions)

		err = rediscli.Ping(ctx).Err()

		if err != nil {
			panic(err)
		}

		limiter = cooldown.NewRedis(rediscli, window)
		gates = gate.NewRedisStore(rediscli, gateTTL)
	}

	discord, err = discordgo.New("Bot " + secrets.Token)

	if err != nil {
		panic(err)
	}

	if config.Proxy != "" {
		discord.Client.Transport = proxy.NewHostRewriter(config.Proxy, http.DefaultTransport, func(s string) {
			logger.Info("[PROXY]", zap.String("note", s))
		})
	}

	discord.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsMessageContent | discordgo.IntentsGuildMembers

	dir := directory.NewSession(discord, logger)

	st = &state.State{
		Context:   ctx,
		Config:    config,
		Logger:    logger,
		Directory: dir,
		Tickets:   tickets.NewController(dir, gates, ledg, config, logger),
		Gates:     gate.NewDiscloser(dir, gates, logger),
		Cooldown:  limiter,
		Warnings:  warnings.New(),
	}

	poster := panels.NewPoster(dir, config, logger)

	discord.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Bot is ready", zap.String("username", r.User.Username), zap.String("userId", r.User.ID))

		_, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commands.Commands)

		if err != nil {
			logger.Error("Error registering commands", zap.Error(err))
		}

		poster.EnsureTicketPanels(r.User.ID)
		poster.EnsureModeratorPanel(r.User.ID)
	})

	discord.AddHandler(func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		st.Tickets.Forget(c.ID)
	})

	discord.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		userID := utils.UserID(i.Interaction)

		switch i.Type {
		case discordgo.InteractionMessageComponent:
			data := i.MessageComponentData()

			fn, ok := msgcomponent.Handlers[strings.Split(data.CustomID, ":")[0]]

			if !ok {
				logger.Error("Invalid component handler", zap.String("customId", data.CustomID), zap.String("userId", userID))
				utils.Ephemeral(s, i.Interaction, "An error occurred while handling this component. Please contact our support team about this!")
				return
			}

			err := fn(s, i.Interaction, data, st)

			if err != nil {
				logger.Error("Error handling component", zap.Error(err), zap.String("customId", data.CustomID), zap.String("userId", userID))
				utils.Edit(s, i.Interaction, "An error occurred while handling this component. Please contact our support team about this: "+err.Error())
				return
			}
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()

			fn, ok := commands.Handlers[data.Name]

			if !ok {
				logger.Error("Invalid command handler", zap.String("command", data.Name), zap.String("userId", userID))
				utils.Ephemeral(s, i.Interaction, "Unknown command.")
				return
			}

			// Server owners can loosen DefaultMemberPermissions, so check again
			if !utils.IsAdmin(i.Interaction) {
				utils.Ephemeral(s, i.Interaction, "You need the Administrator permission to use this command.")
				return
			}

			err := fn(s, i.Interaction, data, st)

			if err != nil {
				logger.Error("Error handling command", zap.Error(err), zap.String("command", data.Name), zap.String("userId", userID))
				utils.Edit(s, i.Interaction, "An error occurred while running this command: "+err.Error())
				return
			}
		}
	})

	err = discord.Open()

	if err != nil {
		panic(err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("Shutting down")

	discord.Close()

	if pool != nil {
		pool.Close()
	}

	if rediscli != nil {
		rediscli.Close()
	}
}
