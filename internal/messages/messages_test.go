package messages

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Lavizord/gridbattle/internal/models"
)

func TestEncodeWireFormat(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{JoinGame{UserID: 3}, `{"event":"join-game","data":{"roomId":null,"userId":3}}`},
		{JoinGame{RoomID: RoomPtr(9), UserID: 3}, `{"event":"join-game","data":{"roomId":9,"userId":3}}`},
		{
			PlaceShips{RoomID: 9, UserID: 3, Positions: []models.Position{{0, 0}, {0, 1}, {4, 4}, {2, 3}}},
			`{"event":"place-ships","data":{"roomId":9,"userId":3,"positions":[[0,0],[0,1],[4,4],[2,3]]}}`,
		},
		{Fire{RoomID: 9, UserID: 3, X: 1, Y: 4}, `{"event":"fire","data":{"roomId":9,"userId":3,"x":1,"y":4}}`},
		{Joined{RoomID: 9}, `{"event":"joined","data":{"roomId":9}}`},
		{GameReady{Turn: 3}, `{"event":"game-ready","data":{"turn":3}}`},
		{MoveUpdate{X: 1, Y: 2, Hit: true, Turn: 4, UserID: 3}, `{"event":"move-update","data":{"x":1,"y":2,"hit":true,"turn":4,"userId":3}}`},
		{GameOver{Winner: 3}, `{"event":"game-over","data":{"winner":3}}`},
	}
	for _, tt := range tests {
		t.Run(tt.event.EventName(), func(t *testing.T) {
			got, err := Encode(tt.event)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode = %s\nwant     %s", got, tt.want)
			}
			back, err := Decode(got)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(back, tt.event) {
				t.Errorf("Decode = %#v, want %#v", back, tt.event)
			}
		})
	}
}

func TestDecodeWithoutData(t *testing.T) {
	e, err := Decode([]byte(`{"event":"ships-placed"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := e.(ShipsPlaced); !ok {
		t.Fatalf("Decode = %T, want ShipsPlaced", e)
	}
}

func TestDecodeMoveUpdateWithoutShooter(t *testing.T) {
	e, err := Decode([]byte(`{"event":"move-update","data":{"x":0,"y":3,"hit":false,"turn":2}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	mu, ok := e.(MoveUpdate)
	if !ok || mu.UserID != 0 || mu.Y != 3 || mu.Turn != 2 {
		t.Fatalf("Decode = %#v", e)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"not json":      `nope`,
		"unknown event": `{"event":"chat","data":{}}`,
		"bad value":     `{"event":"fire","data":{"x":"one"}}`,
	}
	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode([]byte(frame)); err == nil {
				t.Errorf("Decode(%s) succeeded", frame)
			}
		})
	}
	if _, err := Encode(nil); err == nil || !strings.Contains(err.Error(), "nil event") {
		t.Errorf("Encode(nil) err = %v", err)
	}
}

func TestIsClientEvent(t *testing.T) {
	for _, e := range []Event{JoinGame{}, PlaceShips{}, Fire{}} {
		if !IsClientEvent(e) {
			t.Errorf("%s should be a client event", e.EventName())
		}
	}
	for _, e := range []Event{Joined{}, ShipsPlaced{}, GameReady{}, MoveUpdate{}, GameOver{}, Error{}} {
		if IsClientEvent(e) {
			t.Errorf("%s should not be a client event", e.EventName())
		}
	}
}
