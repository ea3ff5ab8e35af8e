package litchiapi

import (
	"encoding/json"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

// ObjectID identifies a Parse object.
type ObjectID string

// Session is the login response of the Parse server.
type Session struct {
	ObjectID      ObjectID `json:"objectId"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	EmailVerified bool     `json:"emailVerified"`
	SessionToken  string   `json:"sessionToken"`
}

// MissionFile points at the uploaded binary blob.
type MissionFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Mission is a mission object stored in the user's cloud hub.
type Mission struct {
	ObjectID ObjectID           `json:"object_id"`
	Location mission.Coordinate `json:"location"`
	Name     string             `json:"name"`
	UserID   ObjectID           `json:"user_id"`
	File     MissionFile        `json:"file"`
}

type rawMission struct {
	ObjectID *string `json:"objectId"`
	Location *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Name *string `json:"name"`
	User *struct {
		ObjectID *string `json:"objectId"`
	} `json:"user"`
	File *struct {
		Name *string `json:"name"`
		URL  *string `json:"url"`
	} `json:"file"`
}

func decodeMission(data json.RawMessage) (Mission, error) {
	var raw rawMission
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mission{}, &MissionFormatError{Msg: err.Error()}
	}
	if raw.ObjectID == nil {
		return Mission{}, &MissionFormatError{Msg: "could not get objectId of mission"}
	}
	if raw.Location == nil || raw.Location.Latitude == nil || raw.Location.Longitude == nil {
		return Mission{}, &MissionFormatError{Msg: "could not get location of mission"}
	}
	if raw.Name == nil {
		return Mission{}, &MissionFormatError{Msg: "could not get name of mission"}
	}
	if raw.User == nil || raw.User.ObjectID == nil {
		return Mission{}, &MissionFormatError{Msg: "could not get user of mission"}
	}
	if raw.File == nil || raw.File.Name == nil || raw.File.URL == nil {
		return Mission{}, &MissionFormatError{Msg: "could not get file of mission"}
	}
	return Mission{
		ObjectID: ObjectID(*raw.ObjectID),
		Location: mission.Coordinate{Lat: *raw.Location.Latitude, Lon: *raw.Location.Longitude},
		Name:     *raw.Name,
		UserID:   ObjectID(*raw.User.ObjectID),
		File:     MissionFile{Name: *raw.File.Name, URL: *raw.File.URL},
	}, nil
}

type pointer struct {
	Type      string   `json:"__type"`
	ClassName string   `json:"className"`
	ObjectID  ObjectID `json:"objectId"`
}

func userPointer(id ObjectID) pointer {
	return pointer{Type: "Pointer", ClassName: "_User", ObjectID: id}
}
