package minecraft

import "testing"

func TestRule_AppliesFor(t *testing.T) {
	type fields struct {
		Action   string
		OS       OS
		Features map[string]bool
	}
	linux := Env{OS: "linux", OSVersion: "5.15.0-76-generic", Arch: "x86"}
	tests := []struct {
		name   string
		fields fields
		env    Env
		want   bool
	}{
		{
			name:   "allow empty",
			fields: fields{Action: "allow"},
			env:    linux,
			want:   true,
		},
		{
			name:   "allow os",
			fields: fields{Action: "allow", OS: OS{Name: "linux"}},
			env:    linux,
			want:   true,
		},
		{
			name:   "allow other os",
			fields: fields{Action: "allow", OS: OS{Name: "osx"}},
			env:    linux,
			want:   false,
		},
		{
			name:   "allow arch",
			fields: fields{Action: "allow", OS: OS{Arch: "x86"}},
			env:    linux,
			want:   true,
		},
		{
			name:   "allow os arch",
			fields: fields{Action: "allow", OS: OS{Name: "linux", Arch: "x86"}},
			env:    linux,
			want:   true,
		},
		{
			name:   "allow version regex",
			fields: fields{Action: "allow", OS: OS{Name: "linux", Version: `^5\.`}},
			env:    linux,
			want:   true,
		},
		{
			name:   "allow version regex mismatch",
			fields: fields{Action: "allow", OS: OS{Name: "linux", Version: `^4\.`}},
			env:    linux,
			want:   false,
		},
		{
			name:   "allow broken version regex",
			fields: fields{Action: "allow", OS: OS{Version: `^(`}},
			env:    linux,
			want:   false,
		},
		{
			name:   "disallow empty",
			fields: fields{Action: "disallow"},
			env:    linux,
			want:   false,
		},
		{
			name:   "disallow os",
			fields: fields{Action: "disallow", OS: OS{Name: "linux"}},
			env:    linux,
			want:   false,
		},
		{
			name:   "disallow other os",
			fields: fields{Action: "disallow", OS: OS{Name: "osx"}},
			env:    linux,
			want:   true,
		},
		{
			name:   "disallow arch",
			fields: fields{Action: "disallow", OS: OS{Arch: "x86"}},
			env:    linux,
			want:   false,
		},
		{
			name:   "disallow os arch",
			fields: fields{Action: "disallow", OS: OS{Name: "linux", Arch: "x86"}},
			env:    linux,
			want:   false,
		},
		{
			name:   "allow feature not set",
			fields: fields{Action: "allow", Features: map[string]bool{"is_demo_user": true}},
			env:    linux,
			want:   false,
		},
		{
			name:   "allow feature set",
			fields: fields{Action: "allow", Features: map[string]bool{"has_custom_resolution": true}},
			env:    linux.WithFeatures(map[string]bool{"has_custom_resolution": true}),
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rule{
				Action:   tt.fields.Action,
				OS:       tt.fields.OS,
				Features: tt.fields.Features,
			}
			if got := r.AppliesFor(tt.env); got != tt.want {
				t.Errorf("Rule.AppliesFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRules_Allowed(t *testing.T) {
	// the classic "everything but osx" library rule set
	notOnMac := Rules{
		{Action: "allow"},
		{Action: "disallow", OS: OS{Name: "osx"}},
	}

	tests := []struct {
		name  string
		rules Rules
		env   Env
		want  bool
	}{
		{"no rules", nil, Env{OS: "linux"}, true},
		{"not on mac / linux", notOnMac, Env{OS: "linux"}, true},
		{"not on mac / osx", notOnMac, Env{OS: "osx"}, false},
		{
			// a later allow can not undo an earlier veto
			"veto is final",
			Rules{{Action: "disallow", OS: OS{Name: "windows"}}, {Action: "allow"}},
			Env{OS: "windows"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.Allowed(tt.env); got != tt.want {
				t.Errorf("Rules.Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if NormalizeOS("darwin") != "osx" {
		t.Error("darwin should be osx")
	}
	if NormalizeArch("amd64") != "x64" || NormalizeArch("386") != "x86" || NormalizeArch("arm") != "arm32" {
		t.Error("unexpected arch normalization")
	}
	if (Env{Arch: "x86"}).WordSize() != "32" || (Env{Arch: "x64"}).WordSize() != "64" {
		t.Error("unexpected word size")
	}
}
