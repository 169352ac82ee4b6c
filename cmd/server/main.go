package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/planwright/floorplan-engine/internal/config"
	"github.com/planwright/floorplan-engine/internal/protocol"
	"github.com/planwright/floorplan-engine/internal/store"
	"github.com/planwright/floorplan-engine/internal/web/views"
	"github.com/planwright/floorplan-engine/internal/ws"
)

func main() {
	cfg := config.Load()

	planDB, err := store.Open(cfg.PlanDBPath)
	if err != nil {
		log.Fatalf("open plan db: %v", err)
	}
	defer planDB.Close()

	hub := ws.NewHub()
	session := NewSession(cfg, planDB, ws.NewBroadcaster(hub))
	if err := session.LoadPlan(context.Background(), cfg.PlanName); err != nil {
		log.Printf("plan load: %v", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		hub.Add(conn)
		sendSnapshot(session, conn)

		go func(c *websocket.Conn) {
			defer hub.Remove(c)
			defer c.Close(websocket.StatusNormalClosure, "")
			for {
				_, data, err := c.Read(context.Background())
				if err != nil {
					return
				}
				var env protocol.IntentEnvelope
				if err := json.Unmarshal(data, &env); err != nil {
					log.Printf("bad intent envelope: %v", err)
					continue
				}
				routeIntent(session, env)
			}
		}(conn)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		st := session.Stats()
		page := views.StatusPage(views.PageData{
			PlanName:    cfg.PlanName,
			NodeCount:   st.Nodes,
			WallCount:   st.Walls,
			RoomCount:   st.Rooms,
			ClientCount: hub.Count(),
			Levels:      st.Levels,
		})
		if err := page.Render(r.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	log.Printf("listening on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, mux))
}

// sendSnapshot catches a new client up: every node, then the cached
// derived geometry per level. Snapshot patches carry sequence zero so
// clients order them before the live feed.
func sendSnapshot(s *Session, conn *websocket.Conn) {
	s.Lock.Lock()
	var patches []protocol.PatchEnvelope
	for _, n := range s.scene.All() {
		patches = append(patches, protocol.PatchEnvelope{
			Type: "NodeUpserted",
			Payload: protocol.NodeUpserted{
				Kind:    string(n.Kind()),
				LevelID: s.scene.LevelOf(n.NodeID()),
				Node:    n,
			},
		})
	}
	for levelID, miters := range s.miters {
		patches = append(patches, protocol.PatchEnvelope{
			Type:    "WallMitersChanged",
			Payload: protocolMiters(levelID, miters),
		})
	}
	for levelID, rs := range s.rooms {
		patches = append(patches, protocol.PatchEnvelope{
			Type:    "RoomsChanged",
			Payload: protocolRooms(levelID, rs),
		})
	}
	for levelID, sides := range s.sides {
		patches = append(patches, protocol.PatchEnvelope{
			Type:    "WallSidesChanged",
			Payload: protocolSides(levelID, sides),
		})
	}
	s.Lock.Unlock()

	for _, p := range patches {
		data, err := json.Marshal(p)
		if err != nil {
			log.Printf("snapshot marshal: %v", err)
			continue
		}
		if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
			return
		}
	}
}
