package server

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/codeduel-vn/codeduel/internal/aws/auth"
	"github.com/codeduel-vn/codeduel/internal/aws/storage"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/internal/judge"
	"github.com/codeduel-vn/codeduel/internal/matchmaking"
	"github.com/codeduel-vn/codeduel/internal/replay"
	"github.com/codeduel-vn/codeduel/internal/snapshot"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type server struct {
	address  string
	upgrader websocket.Upgrader
	config   Config

	queue     *matchmaking.Queue
	judge     *judge.Judge
	storage   *storage.Client
	snapshots *snapshot.Store
	assembler *replay.Assembler

	matches sync.Map // matchId -> *Match
	players sync.Map // playerId -> *player
	inMatch sync.Map // playerId -> matchId

	cognitoPublicKeys map[string]*rsa.PublicKey
}

func NewServer() *server {
	cfg := NewConfig()
	logging.Init(cfg.LogLevel)
	tokenSigningKeyUrl := fmt.Sprintf(
		"https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json",
		cfg.AwsRegion,
		cfg.CognitoUserPoolId,
	)
	cognitoPublicKeys, err := auth.LoadCognitoPublicKeys(tokenSigningKeyUrl)
	if err != nil {
		panic(err)
	}
	awsCfg, _ := awsconfig.LoadDefaultConfig(context.TODO())
	snapshots := snapshot.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		config: cfg,
		queue:  matchmaking.NewQueue(cfg.Matchmaking),
		judge: judge.New(
			judge.Limits{WallClock: cfg.JudgeTimeBudget, MemoryMB: cfg.JudgeMemoryMB},
			judge.DefaultRunners(),
		),
		storage:           storage.NewClient(dynamodb.NewFromConfig(awsCfg), cfg.Tables),
		snapshots:         snapshots,
		assembler:         replay.NewAssembler(snapshots),
		cognitoPublicKeys: cognitoPublicKeys,
	}
	logging.Info("judge ready", zap.Strings("languages", srv.judge.SupportedLanguages()))
	return srv
}

// Start method    starts the duel server
func (s *server) Start() error {
	go s.runQueueTicker()

	http.HandleFunc("/duel", func(w http.ResponseWriter, r *http.Request) {
		playerId, err := s.auth(r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(err.Error()))
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Error("failed to upgrade connection", zap.Error(err))
			return
		}
		defer conn.Close()

		p := s.registerPlayer(playerId, conn)
		logging.Info("player connected", zap.String("player_id", playerId))

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				s.handlePlayerDisconnect(p, conn)
				logging.Info(
					"connection closed",
					zap.String("player_id", playerId),
					zap.Error(err),
				)
				break
			}

			pl := payload{}
			if err := json.Unmarshal(message, &pl); err != nil {
				p.writeJson(errorEvent(ErrStatusInvalidPayload, "malformed payload"))
				continue
			}
			s.handleWebSocketMessage(p, pl)
		}
	})
	logging.Info("websocket server started", zap.String("port", s.config.Port))
	return http.ListenAndServe(s.address, nil)
}

// auth method    authenticates and extracts the player id
func (s *server) auth(r *http.Request) (string, error) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", fmt.Errorf("no authorization")
	}
	validToken, err := auth.ValidateJwt(token, s.cognitoPublicKeys)
	if err != nil || !validToken.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	mapClaims, ok := validToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid map claims")
	}
	v, ok := mapClaims["sub"]
	if !ok {
		return "", fmt.Errorf("player id not found")
	}
	playerId, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid player id")
	}
	return playerId, nil
}

// registerPlayer binds the connection to the player's registry entry; a
// reconnect replaces the previous conn.
func (s *server) registerPlayer(playerId string, conn *websocket.Conn) *player {
	if value, loaded := s.players.Load(playerId); loaded {
		p := value.(*player)
		p.setConn(conn)
		return p
	}
	p := newPlayer(playerId, "", conn)
	s.players.Store(playerId, p)
	return p
}

func (s *server) playerById(playerId string) *player {
	if value, loaded := s.players.Load(playerId); loaded {
		return value.(*player)
	}
	// Placeholder with no conn: writes are swallowed until reconnect.
	p := newPlayer(playerId, "", nil)
	s.players.Store(playerId, p)
	return p
}

func (s *server) sendToPlayer(playerId string, event interface{}) {
	if err := s.playerById(playerId).writeJson(event); err != nil {
		logging.Error("couldn't notify player",
			zap.String("player_id", playerId),
			zap.Error(err),
		)
	}
}

func (s *server) runQueueTicker() {
	ticker := time.NewTicker(s.config.QueueTickPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if pairing := s.queue.Tick(); pairing != nil {
			s.handlePairing(*pairing)
		}
	}
}

func (s *server) newMatch(
	matchId string,
	pairing matchmaking.Pairing,
	ratings [2]entities.UserRating,
	problem entities.Problem,
) *Match {
	return &Match{
		id:              matchId,
		matchType:       pairing.A.MatchType,
		players:         [2]*player{s.playerById(pairing.A.PlayerId), s.playerById(pairing.B.PlayerId)},
		ratings:         ratings,
		problem:         problem,
		status:          entities.MatchWaiting,
		latest:          make(map[string]entities.Submission),
		jobCh:           make(chan submissionJob, submissionBacklog),
		judge:           s.judge,
		notify:          s.sendToPlayer,
		saveSubmission:  s.handleSaveSubmission,
		finalizeHandler: s.handleMatchEnd,
		clock:           time.Now,
	}
}

// unpair rolls back a failed pairing: clears the busy marks and returns
// both entries to the queue with their accumulated wait.
func (s *server) unpair(pairing matchmaking.Pairing) {
	s.inMatch.Delete(pairing.A.PlayerId)
	s.inMatch.Delete(pairing.B.PlayerId)
	s.queue.Reinstate(pairing.A, pairing.B)
}

func (s *server) removeMatch(m *Match) {
	s.matches.Delete(m.id)
	s.inMatch.Delete(m.players[0].Id)
	s.inMatch.Delete(m.players[1].Id)
}

// retryOnce runs op, retrying a single time on failure. Finalize-path
// persistence must not block the match_end emit, so callers only log the
// returned error.
func retryOnce(op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if retryErr := op(); retryErr == nil {
		return nil
	}
	return err
}
