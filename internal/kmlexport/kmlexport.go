// Package kmlexport renders missions as KML for preview in Google Earth.
package kmlexport

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	kml "github.com/twpayne/go-kml"
	"github.com/twpayne/go-kml/icon"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

const balloonText = `<b><font size="+2">$[name]</font></b><br/><br/>$[description]<br/>`

// Write encodes m as an indented KML document named name.
func Write(w io.Writer, m *mission.Mission, name string) error {
	return Document(m, name).WriteIndent(w, "", "  ")
}

// Document builds the KML tree for m: a track line, one placemark per
// waypoint and one per POI.
func Document(m *mission.Mission, name string) *kml.CompoundElement {
	wps := m.Waypoints()
	pois := m.POIs()

	track := make([]kml.Coordinate, 0, len(wps))
	placemarks := make([]kml.Element, 0, len(wps)+len(pois))
	for i, wp := range wps {
		c := kml.Coordinate{Lon: wp.Coordinate.Lon, Lat: wp.Coordinate.Lat, Alt: float64(wp.Altitude)}
		track = append(track, c)
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(fmt.Sprintf("WP %d", i+1)),
			kml.Description(waypointDescription(wp, pois)),
			kml.StyleURL("#styleWaypoint"),
			kml.Point(
				kml.AltitudeMode(altitudeMode(wp.AltitudeMode)),
				kml.Coordinates(c),
			),
		))
	}
	for i, p := range pois {
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(fmt.Sprintf("POI %d", i+1)),
			kml.Description(fmt.Sprintf("Position: %.6f %.6f<br/>Altitude: %.1fm (%s)<br/>",
				p.Coordinate.Lat, p.Coordinate.Lon, p.Altitude, p.AltitudeMode)),
			kml.StyleURL("#stylePOI"),
			kml.Point(
				kml.AltitudeMode(altitudeMode(p.AltitudeMode)),
				kml.Coordinates(kml.Coordinate{Lon: p.Coordinate.Lon, Lat: p.Coordinate.Lat, Alt: float64(p.Altitude)}),
			),
		))
	}

	cfg := m.Config()
	folder := kml.Folder(kml.Name(name)).
		Add(kml.Description(fmt.Sprintf("Litchi mission<br/>Waypoints: %d<br/>POIs: %d<br/>Finish action: %s<br/>Cruising speed: %.1fm/s<br/>",
			len(wps), len(pois), cfg.FinishAction, cfg.CruisingSpeed))).
		Add(kml.Visibility(true)).
		Add(styles()...)
	if len(track) > 1 {
		folder.Add(kml.Placemark(
			kml.Name("Track"),
			kml.StyleURL("#styleTrack"),
			kml.LineString(
				kml.AltitudeMode(trackAltitudeMode(wps)),
				kml.Extrude(true),
				kml.Tessellate(false),
				kml.Coordinates(track...),
			),
		))
	}
	folder.Add(placemarks...)
	return kml.KML(folder)
}

func waypointDescription(wp mission.Waypoint, pois []mission.POI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Position: %.6f %.6f<br/>", wp.Coordinate.Lat, wp.Coordinate.Lon)
	fmt.Fprintf(&b, "Altitude: %.1fm (%s)<br/>", wp.Altitude, wp.AltitudeMode)
	fmt.Fprintf(&b, "Heading: %.1f°<br/>", wp.Heading)
	if wp.Speed > 0 {
		fmt.Fprintf(&b, "Speed: %.1fm/s<br/>", wp.Speed)
	}
	if wp.HasPOI() && wp.POIIndex < len(pois) {
		fmt.Fprintf(&b, "POI: %d<br/>", wp.POIIndex+1)
	}
	if len(wp.Actions) > 0 {
		names := make([]string, len(wp.Actions))
		for i, a := range wp.Actions {
			names[i] = a.String()
		}
		fmt.Fprintf(&b, "Actions: %s<br/>", strings.Join(names, ", "))
	}
	if wp.PhotoInterval != nil {
		fmt.Fprintf(&b, "Photo interval: %s<br/>", wp.PhotoInterval)
	}
	return b.String()
}

func altitudeMode(m mission.AltitudeMode) kml.AltitudeModeEnum {
	if m == mission.AltitudeAbsolute {
		return kml.AltitudeModeAbsolute
	}
	return kml.AltitudeModeRelativeToGround
}

// trackAltitudeMode is absolute only when every waypoint is.
func trackAltitudeMode(wps []mission.Waypoint) kml.AltitudeModeEnum {
	for _, wp := range wps {
		if wp.AltitudeMode != mission.AltitudeAbsolute {
			return kml.AltitudeModeRelativeToGround
		}
	}
	return kml.AltitudeModeAbsolute
}

func styles() []kml.Element {
	balloon := kml.BalloonStyle(
		kml.BgColor(color.RGBA{R: 0xde, G: 0xde, B: 0xde, A: 0x40}),
		kml.Text(balloonText),
	)
	return []kml.Element{
		kml.SharedStyle("styleWaypoint",
			kml.IconStyle(kml.Scale(0.8), kml.Icon(kml.Href(icon.PaddleHref("ltblu-circle")))),
			balloon,
		),
		kml.SharedStyle("stylePOI",
			kml.IconStyle(kml.Scale(0.8), kml.Icon(kml.Href(icon.PaddleHref("ylw-diamond")))),
			balloon,
		),
		kml.SharedStyle("styleTrack",
			kml.LineStyle(
				kml.Width(2.0),
				kml.Color(color.RGBA{R: 0, G: 0xff, B: 0xff, A: 0x66}),
			),
			kml.PolyStyle(
				kml.Color(color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0x66}),
			),
		),
	}
}
