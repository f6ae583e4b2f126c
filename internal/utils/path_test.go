package utils

import "testing"

func TestToTclPath(t *testing.T) {
	if got := ToTclPath(`C:\configs\port.prt`); got != "C:/configs/port.prt" {
		t.Errorf("ToTclPath() = %q", got)
	}
}

func TestRemotePath(t *testing.T) {
	tests := []struct {
		dir, local, want string
	}{
		{"/tmp/ixexplorer", "/home/lab/cfg/a.prt", "/tmp/ixexplorer/a.prt"},
		{"/tmp/ixexplorer/", `C:\cfg\b.str`, "/tmp/ixexplorer/b.str"},
	}
	for _, tt := range tests {
		if got := RemotePath(tt.dir, tt.local); got != tt.want {
			t.Errorf("RemotePath(%q, %q) = %q, want %q", tt.dir, tt.local, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext(`C:\cfg\Port.PRT`); got != ".prt" {
		t.Errorf("Ext() = %q", got)
	}
}
