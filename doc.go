// Package arena (module github.com/kako-jun/nostr-arena-go) coordinates
// serverless, real-time multiplayer game rooms over a decentralized Nostr
// relay network. There is no central authoritative server: room membership,
// presence, and game-start agreement are all derived from relay-held events
// keyed by a deterministic room tag.
//
// A minimal Auto-mode session:
//
//	cfg := arena.NewConfig("my-game", arena.WithMaxPlayers(2))
//	a, err := arena.New[MyState](cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	url, err := a.Create(ctx)
//	// ... share url with a second player ...
//	for {
//		ev, err := a.Recv(ctx)
//		if err != nil {
//			break
//		}
//		switch e := ev.(type) {
//		case arena.EventPlayerJoin:
//			log.Println("joined:", e.PubKey)
//		case arena.EventGameStart:
//			log.Println("game started, seed =", a.RoomState().Seed)
//		}
//	}
//
// Four start-mode sub-protocols govern when a room transitions from Waiting
// to Playing: Auto (as soon as the room is full), Ready (once every player
// calls SendReady(true)), Countdown (Ready, followed by a synchronized
// tick-down), and Host (only the host's explicit StartGame call begins
// play). See Config.StartMode.
package arena
