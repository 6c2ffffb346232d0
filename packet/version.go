package packet

// Protocol numbers of the releases the catalog distinguishes.
const (
	Minecraft_1_8    int32 = 47
	Minecraft_1_9    int32 = 107
	Minecraft_1_9_1  int32 = 108
	Minecraft_1_12   int32 = 335
	Minecraft_1_12_1 int32 = 338
	Minecraft_1_12_2 int32 = 340
	Minecraft_1_13   int32 = 393
	Minecraft_1_14   int32 = 477
	Minecraft_1_15   int32 = 573
	Minecraft_1_16   int32 = 735
	Minecraft_1_16_2 int32 = 751
	Minecraft_1_16_4 int32 = 754
	Minecraft_1_17   int32 = 755
)

var versionNames = []struct {
	protocol int32
	name     string
}{
	{Minecraft_1_17, "1.17"},
	{Minecraft_1_16_4, "1.16.4"},
	{Minecraft_1_16_2, "1.16.2"},
	{Minecraft_1_16, "1.16"},
	{Minecraft_1_15, "1.15"},
	{Minecraft_1_14, "1.14"},
	{Minecraft_1_13, "1.13"},
	{Minecraft_1_12_2, "1.12.2"},
	{Minecraft_1_12_1, "1.12.1"},
	{Minecraft_1_12, "1.12"},
	{Minecraft_1_9_1, "1.9.1"},
	{Minecraft_1_9, "1.9"},
	{Minecraft_1_8, "1.8"},
}

// VersionName returns the newest release name at or below protocol.
func VersionName(protocol int32) string {
	for _, v := range versionNames {
		if protocol >= v.protocol {
			return v.name
		}
	}
	return "unknown"
}
