package minecraft_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/minepkg/prelaunch/internals/minecraft"
)

func ExampleLaunchManifest_MergeWith() {
	source := &minecraft.LaunchManifest{
		ID:        "fabric-loader-0.14.21-1.20.1",
		MainClass: "net.fabricmc.loader.impl.launch.knot.KnotClient",
		Libraries: []minecraft.Library{
			{Name: "net.fabricmc:fabric-loader:0.14.21"},
		},
	}
	parent := &minecraft.LaunchManifest{
		ID:        "1.20.1",
		MainClass: "net.minecraft.client.main.Main",
		Libraries: []minecraft.Library{
			{Name: "commons-logging:commons-logging:1.2"},
		},
	}
	// MergeWith modifies the source manifest
	source.MergeWith(parent)

	// Print the modified source manifest
	fmt.Println("ID:", source.ID)
	fmt.Println("Main:", source.MainClass)
	fmt.Println("Libraries:")
	for _, arg := range source.Libraries {
		fmt.Println(" - ", arg.Name)
	}
	// Output:
	// ID: fabric-loader-0.14.21-1.20.1
	// Main: net.fabricmc.loader.impl.launch.knot.KnotClient
	// Libraries:
	//  -  net.fabricmc:fabric-loader:0.14.21
	//  -  commons-logging:commons-logging:1.2
}

func TestLaunchManifest_Unmarshal(t *testing.T) {
	raw := `{
		"id": "1.20.1",
		"mainClass": "net.minecraft.client.main.Main",
		"arguments": {
			"game": ["--username", "${auth_player_name}", {
				"rules": [{"action": "allow", "features": {"has_custom_resolution": true}}],
				"value": ["--width", "${resolution_width}"]
			}],
			"jvm": [{
				"rules": [{"action": "allow", "os": {"name": "osx"}}],
				"value": "-XstartOnFirstThread"
			}, "-cp", "${classpath}"]
		},
		"assetIndex": {"id": "5", "sha1": "abc", "url": "https://example.com/5.json"},
		"downloads": {"client": {"sha1": "def", "size": 1, "url": "https://example.com/client.jar"}},
		"libraries": []
	}`

	var m minecraft.LaunchManifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}

	if len(m.Arguments.Game) != 3 {
		t.Fatalf("expected 3 game args, got %d", len(m.Arguments.Game))
	}
	if v := m.Arguments.Game[2].Values(); len(v) != 2 || v[0] != "--width" {
		t.Errorf("unexpected conditional value %v", v)
	}
	if v := m.Arguments.JVM[0].Values(); len(v) != 1 || v[0] != "-XstartOnFirstThread" {
		t.Errorf("unexpected string value %v", v)
	}
	if len(m.Arguments.JVM[0].Rules) != 1 {
		t.Errorf("expected jvm rule")
	}
	if m.AssetIndex.ID != "5" || m.Downloads.Client.URL != "https://example.com/client.jar" {
		t.Errorf("unexpected manifest %+v", m)
	}
}

func TestLaunchManifest_Inherit(t *testing.T) {
	child := &minecraft.LaunchManifest{
		ID:           "child",
		InheritsFrom: "parent",
		Arguments: minecraft.Arguments{
			JVM: []minecraft.Argument{minecraft.NewArgument("-Dchild")},
		},
	}
	parent := &minecraft.LaunchManifest{
		ID:        "parent",
		Type:      "release",
		MainClass: "parent.Main",
		Arguments: minecraft.Arguments{
			JVM: []minecraft.Argument{minecraft.NewArgument("-Dparent")},
		},
	}

	merged := child.Inherit(parent)
	if merged.ID != "child" || merged.MainClass != "parent.Main" || merged.Type != "release" {
		t.Errorf("unexpected merged manifest %+v", merged)
	}
	if len(merged.Arguments.JVM) != 2 || merged.Arguments.JVM[0].Values()[0] != "-Dparent" {
		t.Errorf("parent jvm args should come first: %+v", merged.Arguments.JVM)
	}
	if len(child.Arguments.JVM) != 1 {
		t.Error("child must not be modified")
	}
	if merged.MinecraftVersion() != "parent" {
		t.Errorf("unexpected minecraft version %s", merged.MinecraftVersion())
	}
}
