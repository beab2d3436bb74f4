package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"chat_gateway_service/internal/chat/chattest"
	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/hub"
	"chat_gateway_service/internal/chat/repository"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/logger"

	"github.com/cucumber/godog"
)

type readReceiptFeature struct {
	store    *chattest.Store
	unread   repository.UnreadIndex
	svc      *ChatService
	users    map[string]int64
	tokens   chattest.Tokens
	gateways map[string]*Gateway
	frames   map[string][]frame
}

func (f *readReceiptFeature) reset() {
	logger.SetNewNop()
	f.store = chattest.NewStore()
	f.unread = repository.NewMemoryUnreadIndex()
	f.users = map[string]int64{}
	f.tokens = chattest.Tokens{}
	f.gateways = map[string]*Gateway{}
	f.frames = map[string][]frame{}
	f.svc = NewChatService(hub.New(), f.store, f.store, f.unread, f.tokens, nil,
		config.WebsocketConfig{SendBuffer: 64, OpTimeout: time.Second})
}

func (f *readReceiptFeature) collect() error {
	for name, g := range f.gateways {
		for {
			select {
			case raw := <-g.Outbound():
				var fr frame
				if err := json.Unmarshal(raw, &fr); err != nil {
					return err
				}
				f.frames[name] = append(f.frames[name], fr)
				continue
			default:
			}
			break
		}
	}
	return nil
}

func (f *readReceiptFeature) channelHasMembers(channelID int64, names string) error {
	var ids []int64
	for i, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		id := int64(i + 1)
		f.users[name] = id
		f.tokens["tok-"+name] = id
		ids = append(ids, id)
	}
	f.store.SetMembers(channelID, ids...)
	return nil
}

func (f *readReceiptFeature) connected(a, b, c string, channelID int64) error {
	for _, name := range []string{a, b, c} {
		g := f.svc.NewGateway()
		if err := g.Connect(context.Background(), fmt.Sprint(channelID), "tok-"+name); err != nil {
			return err
		}
		if _, err := g.Replay(context.Background()); err != nil {
			return err
		}
		f.gateways[name] = g
	}
	return nil
}

func (f *readReceiptFeature) disconnects(name string) error {
	f.gateways[name].Disconnect()
	delete(f.gateways, name)
	return nil
}

func (f *readReceiptFeature) reconnects(name string, channelID int64) error {
	g := f.svc.NewGateway()
	if err := g.Connect(context.Background(), fmt.Sprint(channelID), "tok-"+name); err != nil {
		return err
	}
	f.gateways[name] = g
	if _, err := g.Replay(context.Background()); err != nil {
		return err
	}
	return f.collect()
}

func (f *readReceiptFeature) sends(name, content string) error {
	raw, _ := json.Marshal(map[string]string{"type": "chat_message", "message": content})
	if err := f.gateways[name].Receive(context.Background(), raw); err != nil {
		return err
	}
	return f.collect()
}

func (f *readReceiptFeature) acknowledges(name string) error {
	if err := f.gateways[name].Receive(context.Background(), []byte(`{"type":"acknowledge_message"}`)); err != nil {
		return err
	}
	return f.collect()
}

func (f *readReceiptFeature) everyoneReceivesChat(content string, id int64) error {
	for name := range f.gateways {
		got := ofType(f.frames[name], domain.EventChatMessage)
		if len(got) != 1 || got[0].Message != content || got[0].MessageID != id {
			return fmt.Errorf("%s got %+v", name, got)
		}
	}
	return nil
}

func (f *readReceiptFeature) noReceipt() error {
	for name := range f.gateways {
		if got := ofType(f.frames[name], domain.EventMessageRead); len(got) != 0 {
			return fmt.Errorf("%s got unexpected receipt %+v", name, got)
		}
	}
	return nil
}

func (f *readReceiptFeature) everyoneReceivesReceipt(id int64, sender string) error {
	for name := range f.gateways {
		got := ofType(f.frames[name], domain.EventMessageRead)
		if len(got) != 1 || got[0].MessageID != id || got[0].SenderID != f.users[sender] || got[0].Info != domain.ReadByAllInfo {
			return fmt.Errorf("%s got %+v", name, got)
		}
	}
	return nil
}

func (f *readReceiptFeature) flaggedRead(id int64) error {
	if m := f.store.Message(id); m == nil || !m.IsRead {
		return fmt.Errorf("message %d not read", id)
	}
	return nil
}

func (f *readReceiptFeature) exactlyReceipts(n int, id int64) error {
	for name := range f.gateways {
		count := 0
		for _, fr := range ofType(f.frames[name], domain.EventMessageRead) {
			if fr.MessageID == id {
				count++
			}
		}
		if count != n {
			return fmt.Errorf("%s got %d receipts", name, count)
		}
	}
	return nil
}

func (f *readReceiptFeature) pendingCount(name string, n int) error {
	ids, err := f.unread.Pending(context.Background(), 100, f.users[name])
	if err != nil {
		return err
	}
	if len(ids) != n {
		return fmt.Errorf("%s has %d pending", name, len(ids))
	}
	return nil
}

func (f *readReceiptFeature) noPending(name string) error {
	return f.pendingCount(name, 0)
}

func initializeReadReceiptScenario(sc *godog.ScenarioContext) {
	f := &readReceiptFeature{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		for _, g := range f.gateways {
			g.Disconnect()
		}
		return ctx, nil
	})

	sc.Step(`^channel (\d+) has members "([^"]*)"$`, f.channelHasMembers)
	sc.Step(`^"([^"]*)", "([^"]*)" and "([^"]*)" are connected to channel (\d+)$`, f.connected)
	sc.Step(`^"([^"]*)" disconnects$`, f.disconnects)
	sc.Step(`^"([^"]*)" reconnects to channel (\d+)$`, f.reconnects)
	sc.Step(`^"([^"]*)" sends "([^"]*)"$`, f.sends)
	sc.Step(`^"([^"]*)" acknowledges$`, f.acknowledges)
	sc.Step(`^every connection receives chat message "([^"]*)" with id (\d+)$`, f.everyoneReceivesChat)
	sc.Step(`^no read receipt is broadcast$`, f.noReceipt)
	sc.Step(`^every connection receives a read receipt for message (\d+) from "([^"]*)"$`, f.everyoneReceivesReceipt)
	sc.Step(`^message (\d+) is flagged read$`, f.flaggedRead)
	sc.Step(`^exactly (\d+) read receipt is broadcast for message (\d+)$`, f.exactlyReceipts)
	sc.Step(`^"([^"]*)" has no pending messages$`, f.noPending)
	sc.Step(`^"([^"]*)" has (\d+) pending message$`, f.pendingCount)
}

func TestReadReceiptFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "read_receipt",
		ScenarioInitializer: initializeReadReceiptScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("read receipt feature scenarios failed")
	}
}
