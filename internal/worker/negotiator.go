package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/jwebster45206/haggle/internal/logger"
	"github.com/jwebster45206/haggle/internal/services"
	"github.com/jwebster45206/haggle/internal/services/events"
	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/prompts"
	"github.com/jwebster45206/haggle/pkg/retry"
	"github.com/jwebster45206/haggle/pkg/shop"
	"github.com/jwebster45206/haggle/pkg/storage"
	"github.com/jwebster45206/haggle/pkg/textfilter"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is busy with another turn")
	ErrInputLocked     = errors.New("session is not accepting player input")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrTurnLost        = errors.New("turn lock was lost before the cycle finished")
)

// TurnResult is what one player message produced.
type TurnResult struct {
	Reply      string                 `json:"reply"`
	Decision   negotiation.Decision   `json:"decision"`
	Resolution negotiation.Resolution `json:"resolution,omitempty"`
	Session    *negotiation.Session   `json:"session"`
}

// Negotiator drives sessions through client arrivals and player turns.
// It is used by the HTTP handlers (synchronously) and the queue worker.
//
// Every mutating call runs under the session's turn lock and saves only
// when the whole cycle succeeded, so a failed cycle leaves the stored
// session as it was. The lock is refreshed while the cycle runs and
// checked again before saving.
type Negotiator struct {
	storage     storage.Storage
	llm         services.LLMService
	lock        services.TurnLock
	publisher   events.Publisher
	parsePolicy retry.Policy
	filter      *textfilter.ReplyFilter
	logger      *slog.Logger

	// keepAlive is the lock refresh interval; zero disables refreshing.
	keepAlive time.Duration
}

func NewNegotiator(
	store storage.Storage,
	llm services.LLMService,
	lock services.TurnLock,
	publisher events.Publisher,
	parsePolicy retry.Policy,
	logger *slog.Logger,
) *Negotiator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Negotiator{
		storage:     store,
		llm:         llm,
		lock:        lock,
		publisher:   publisher,
		parsePolicy: parsePolicy,
		filter:      textfilter.NewReplyFilter(),
		logger:      logger,
		keepAlive:   lock.TTL() / 3,
	}
}

// StartGame creates a session for the shop and brings in the first client.
// If the arrival fails the session is still returned, saved and waiting,
// so the caller can retry with NextClient.
func (n *Negotiator) StartGame(ctx context.Context, shopFile string) (*negotiation.Session, error) {
	sh, err := n.storage.GetShop(ctx, shopFile)
	if err != nil {
		return nil, err
	}

	sess := negotiation.NewSession(shopFile, sh.Game.MaxClients, sh.Game.NeededGains)
	if err := n.storage.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	n.logger.Info("Session created", "session_id", sess.ID.String(), "shop", shopFile)

	arrived, err := n.NextClient(ctx, sess.ID)
	if err != nil {
		return sess, err
	}
	return arrived, nil
}

// NextClient generates an item and a personality, seeds a fresh
// conversation, and stores the client's opening line.
func (n *Negotiator) NextClient(ctx context.Context, id uuid.UUID) (*negotiation.Session, error) {
	var out *negotiation.Session
	err := n.withTurn(ctx, id, func(ctx context.Context, t *lease) error {
		log := t.log
		sess, sh, err := n.load(ctx, id)
		if err != nil {
			return err
		}
		if err := sess.RequestNextClient(); err != nil {
			return err
		}

		item, conv, err := n.arrive(ctx, sh, log)
		if err != nil {
			return err
		}
		if err := sess.BeginClient(item, conv); err != nil {
			return err
		}
		if err := n.save(ctx, t, sess); err != nil {
			return err
		}

		opening, _ := conv.Last()
		log.Info("Client arrived",
			"item", item.Name,
			"market_value", item.MarketValue,
			"client_offer", item.ClientOffer,
			"client_number", sess.Progress.ClientCount+1)
		n.publish(ctx, sess.ID, events.ClientArrived(logger.RequestIDFromContext(ctx), item.Name, item.ClientOffer, opening.Content))

		out = sess
		return nil
	})
	return out, err
}

// HandleMessage runs one reasoning and reply cycle for a player message.
func (n *Negotiator) HandleMessage(ctx context.Context, id uuid.UUID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var out *TurnResult
	err := n.withTurn(ctx, id, func(ctx context.Context, t *lease) error {
		log := t.log
		sess, sh, err := n.load(ctx, id)
		if err != nil {
			return err
		}
		if !sess.State.AcceptsInput() || sess.Item == nil || sess.Conversation == nil {
			return fmt.Errorf("%w: session is %s", ErrInputLocked, sess.State)
		}

		conv := sess.Conversation
		conv.AppendPlayer(text)

		reasoning, err := retry.UntilValid(ctx, n.parsePolicy, log,
			n.producer(prompts.ReasoningMessages(conv.Messages(), sh.Client), sh.Client.ReasoningRequest.AsJSON()),
			negotiation.ParseReasoning)
		if err != nil {
			return fmt.Errorf("reasoning failed: %w", err)
		}

		if reasoning.StalePrice(sess.Item.ClientOffer) {
			log.Warn("Reasoning held the price but reported a different new_price",
				"new_price", reasoning.NewPrice,
				"client_offer", sess.Item.ClientOffer)
		}
		decision := negotiation.Decide(reasoning, sess.Item.ClientOffer)
		conv.AppendSystem(decision.Instruction)

		reply, err := n.reply(ctx, conv.Messages(), sh)
		if err != nil {
			return err
		}
		conv.AppendAssistant(reply)

		offerBefore := sess.Item.ClientOffer
		resolution, err := sess.Apply(decision.Actions)
		if err != nil {
			return err
		}
		if err := n.save(ctx, t, sess); err != nil {
			return err
		}

		log.Info("Turn completed",
			"outraged", reasoning.Outraged,
			"deal_made", reasoning.DealMade,
			"changed_price", reasoning.ChangedPrice,
			"offer_before", offerBefore,
			"offer_after", sess.Item.ClientOffer,
			"resolution", resolution,
			"state", sess.State)

		n.publishTurn(ctx, sess, reply, decision, resolution)

		out = &TurnResult{
			Reply:      reply,
			Decision:   decision,
			Resolution: resolution,
			Session:    sess,
		}
		return nil
	})
	return out, err
}

// GetSession returns the stored session.
func (n *Negotiator) GetSession(ctx context.Context, id uuid.UUID) (*negotiation.Session, error) {
	sess, err := n.storage.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// DeleteSession removes a session once no turn is running on it.
func (n *Negotiator) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return n.withTurn(ctx, id, func(ctx context.Context, t *lease) error {
		if _, err := n.GetSession(ctx, id); err != nil {
			return err
		}
		if err := n.storage.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		t.log.Info("Session deleted")
		return nil
	})
}

// lease is a held turn lock.
type lease struct {
	lock  services.TurnLock
	id    uuid.UUID
	owner string
	log   *slog.Logger
}

// confirm extends the lease, failing with ErrTurnLost once another owner
// could have taken the session.
func (l *lease) confirm(ctx context.Context) error {
	ok, err := l.lock.Refresh(ctx, l.id, l.owner)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTurnLost
	}
	return nil
}

// withTurn holds the session's turn lock while fn runs. If the lock is
// lost, fn's context is cancelled and the call fails with ErrTurnLost.
func (n *Negotiator) withTurn(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, t *lease) error) error {
	owner := ulid.Make().String()
	ok, err := n.lock.Acquire(ctx, id, owner)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionBusy
	}
	defer func() {
		// Release even if the caller's context is gone.
		if err := n.lock.Release(context.WithoutCancel(ctx), id, owner); err != nil {
			n.logger.Error("Failed to release turn lock", "error", err, "session_id", id.String())
		}
	}()

	log := logger.WithSession(n.logger, id.String())
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		log = logger.WithRequestID(log, rid)
	}
	t := &lease{lock: n.lock, id: id, owner: owner, log: log}

	turnCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if n.keepAlive > 0 {
		go n.keepTurn(turnCtx, cancel, t)
	}

	err = fn(turnCtx, t)
	if err != nil && !errors.Is(err, ErrTurnLost) && errors.Is(context.Cause(turnCtx), ErrTurnLost) {
		return fmt.Errorf("%w: %v", ErrTurnLost, err)
	}
	return err
}

// keepTurn refreshes the lease until the cycle ends.
func (n *Negotiator) keepTurn(ctx context.Context, cancel context.CancelCauseFunc, t *lease) {
	ticker := time.NewTicker(n.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := t.confirm(ctx)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return
			case errors.Is(err, ErrTurnLost):
				t.log.Warn("Turn lock lost, stopping the cycle")
				cancel(ErrTurnLost)
				return
			default:
				// Try again on the next tick; the lock still has time left.
				t.log.Warn("Failed to refresh turn lock", "error", err)
			}
		}
	}
}

func (n *Negotiator) load(ctx context.Context, id uuid.UUID) (*negotiation.Session, *shop.Shop, error) {
	sess, err := n.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sh, err := n.storage.GetShop(ctx, sess.ShopFile)
	if err != nil {
		return nil, nil, err
	}
	return sess, sh, nil
}

// save writes the session only while the lease is still held.
func (n *Negotiator) save(ctx context.Context, t *lease, sess *negotiation.Session) error {
	if err := t.confirm(ctx); err != nil {
		return fmt.Errorf("session not saved: %w", err)
	}
	sess.UpdatedAt = time.Now()
	if err := n.storage.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// arrive builds everything a new client needs: item, personality, seed
// and opening line.
func (n *Negotiator) arrive(ctx context.Context, sh *shop.Shop, log *slog.Logger) (negotiation.Item, *chat.Conversation, error) {
	item, err := retry.UntilValid(ctx, n.parsePolicy, log,
		n.producer(prompts.ItemGenerationMessages(sh.Items), sh.Items.Request.AsJSON()),
		negotiation.ParseItem)
	if err != nil {
		return negotiation.Item{}, nil, fmt.Errorf("item generation failed: %w", err)
	}

	personality, err := n.llm.Chat(ctx, prompts.PersonalityMessages(sh.Client), sh.Client.PersonalityRequest)
	if err != nil {
		return negotiation.Item{}, nil, fmt.Errorf("personality generation failed: %w", err)
	}

	seed, err := prompts.NewClientSeed().
		WithInitialPrompt(sh.Client.InitialPrompt).
		WithPersonality(personality.Message).
		WithItem(item).
		WithRules(sh.Client.Rules).
		Build()
	if err != nil {
		return negotiation.Item{}, nil, fmt.Errorf("failed to build client seed: %w", err)
	}

	conv := chat.NewConversation(seed)
	opening, err := n.reply(ctx, conv.Messages(), sh)
	if err != nil {
		return negotiation.Item{}, nil, err
	}
	conv.AppendAssistant(opening)
	return item, conv, nil
}

// reply asks for the client's next visible line.
func (n *Negotiator) reply(ctx context.Context, messages []chat.ChatMessage, sh *shop.Shop) (string, error) {
	resp, err := n.llm.Chat(ctx, messages, sh.Client.ReplyRequest)
	if err != nil {
		return "", fmt.Errorf("client reply failed: %w", err)
	}
	text := strings.TrimSpace(resp.Message)
	if textfilter.AppliesTo(sh.ContentRating) {
		text = n.filter.Filter(text)
	}
	return text, nil
}

func (n *Negotiator) producer(messages []chat.ChatMessage, params chat.RequestParams) retry.Producer {
	return func(ctx context.Context) (string, error) {
		resp, err := n.llm.Chat(ctx, messages, params)
		if err != nil {
			return "", err
		}
		return resp.Message, nil
	}
}

func (n *Negotiator) publishTurn(ctx context.Context, sess *negotiation.Session, reply string, d negotiation.Decision, res negotiation.Resolution) {
	rid := logger.RequestIDFromContext(ctx)
	n.publish(ctx, sess.ID, events.TurnCompleted(rid, reply, d.Instruction, sess.Item.ClientOffer, sess.DealValue))

	switch res {
	case negotiation.ResolutionClosed:
		n.publish(ctx, sess.ID, events.DealClosed(rid, sess.Item.ClientOffer, sess.Progress.Gains))
	case negotiation.ResolutionCancelled:
		n.publish(ctx, sess.ID, events.DealCancelled(rid))
	}
	if sess.Outcome != nil {
		n.publish(ctx, sess.ID, events.GameEnded(rid, sess.Outcome.Success, sess.Outcome.Status, sess.Progress.Gains))
	}
}

// publish never fails the turn; events are best effort.
func (n *Negotiator) publish(ctx context.Context, id uuid.UUID, ev events.Event) {
	if err := n.publisher.Publish(ctx, id, ev); err != nil {
		n.logger.Error("Failed to publish event", "error", err, "event_type", ev.Type, "session_id", id.String())
	}
}
