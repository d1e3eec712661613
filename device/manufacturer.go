package device

// ManufacturerInternalUse is the name reported for the reserved id 0xffff.
const ManufacturerInternalUse = "internal use"

// ManufacturerNotAssigned is the fallback for ids missing from the table.
const ManufacturerNotAssigned = "not assigned"

const manufacturerIDInternalUse = 0xffff

// Bluetooth SIG company identifiers as reported in the manufacturer field
// of the Read Remote Version Information Complete event.
var manufacturers = map[uint16]string{
	0:   "Ericsson Technology Licensing",
	1:   "Nokia Mobile Phones",
	2:   "Intel Corp.",
	3:   "IBM Corp.",
	4:   "Toshiba Corp.",
	5:   "3Com",
	6:   "Microsoft",
	7:   "Lucent",
	8:   "Motorola",
	9:   "Infineon Technologies AG",
	10:  "Cambridge Silicon Radio",
	11:  "Silicon Wave",
	12:  "Digianswer A/S",
	13:  "Texas Instruments Inc.",
	14:  "Ceva, Inc. (formerly Parthus Technologies, Inc.)",
	15:  "Broadcom Corporation",
	16:  "Mitel Semiconductor",
	17:  "Widcomm, Inc",
	18:  "Zeevo, Inc.",
	19:  "Atmel Corporation",
	20:  "Mitsubishi Electric Corporation",
	21:  "RTX Telecom A/S",
	22:  "KC Technology Inc.",
	23:  "NewLogic",
	24:  "Transilica, Inc.",
	25:  "Rohde & Schwarz GmbH & Co. KG",
	26:  "TTPCom Limited",
	27:  "Signia Technologies, Inc.",
	28:  "Conexant Systems Inc.",
	29:  "Qualcomm",
	30:  "Inventel",
	31:  "AVM Berlin",
	32:  "BandSpeed, Inc.",
	33:  "Mansella Ltd",
	34:  "NEC Corporation",
	35:  "WavePlus Technology Co., Ltd.",
	36:  "Alcatel",
	37:  "Philips Semiconductors",
	38:  "C Technologies",
	39:  "Open Interface",
	40:  "R F Micro Devices",
	41:  "Hitachi Ltd",
	42:  "Symbol Technologies, Inc.",
	43:  "Tenovis",
	44:  "Macronix International Co. Ltd.",
	45:  "GCT Semiconductor",
	46:  "Norwood Systems",
	47:  "MewTel Technology Inc.",
	48:  "ST Microelectronics",
	49:  "Synopsis",
	50:  "Red-M (Communications) Ltd",
	51:  "Commil Ltd",
	52:  "Computer Access Technology Corporation (CATC)",
	53:  "Eclipse (HQ Espana) S.L.",
	54:  "Renesas Technology Corp.",
	55:  "Mobilian Corporation",
	56:  "Terax",
	57:  "Integrated System Solution Corp.",
	58:  "Matsushita Electric Industrial Co., Ltd.",
	59:  "Gennum Corporation",
	60:  "Research In Motion",
	61:  "IPextreme, Inc.",
	62:  "Systems and Chips, Inc.",
	63:  "Bluetooth SIG, Inc.",
	64:  "Seiko Epson Corporation",
	65:  "Integrated Silicon Solution Taiwan, Inc.",
	66:  "CONWISE Technology Corporation Ltd",
	67:  "PARROT SA",
	68:  "Socket Mobile",
	69:  "Atheros Communications, Inc.",
	70:  "MediaTek, Inc.",
	71:  "Bluegiga",
	72:  "Marvell Technology Group Ltd.",
	73:  "3DSP Corporation",
	74:  "Accel Semiconductor Ltd.",
	75:  "Continental Automotive Systems",
	76:  "Apple, Inc.",
	77:  "Staccato Communications, Inc.",
	78:  "Avago Technologies",
	79:  "APT Licensing Ltd.",
	80:  "SiRF Technology",
	81:  "Tzero Technologies, Inc.",
	82:  "J&M Corporation",
	83:  "Free2move AB",
	84:  "3DiJoy Corporation",
	85:  "Plantronics, Inc.",
	86:  "Sony Ericsson Mobile Communications",
	87:  "Harman International Industries, Inc.",
	88:  "Vizio, Inc.",
	89:  "Nordic Semiconductor ASA",
	90:  "EM Microelectronic-Marin SA",
	91:  "Ralink Technology Corporation",
	92:  "Belkin International, Inc.",
	93:  "Realtek Semiconductor Corporation",
	94:  "Stonestreet One, LLC",
	95:  "Wicentric, Inc.",
	96:  "RivieraWaves S.A.S",
	97:  "RDA Microelectronics",
	98:  "Gibson Guitars",
	99:  "MiCommand Inc.",
	100: "Band XI International, LLC",
	101: "Hewlett-Packard Company",
	102: "9Solutions Oy",
	103: "GN Netcom A/S",
	104: "General Motors",
	105: "A&D Engineering, Inc.",
	106: "MindTree Ltd.",
	107: "Polar Electro OY",
	108: "Beautiful Enterprise Co., Ltd.",
	109: "BriarTek, Inc.",
	110: "Summit Data Communications, Inc.",
	111: "Sound ID",
	112: "Monster, LLC",
	113: "connectBlue AB",
	114: "ShangHai Super Smart Electronics Co. Ltd.",
	115: "Group Sense Ltd.",
	116: "Zomm, LLC",
	117: "Samsung Electronics Co. Ltd.",
	118: "Creative Technology Ltd.",
	119: "Laird Technologies",
	120: "Nike, Inc.",
	121: "lesswire AG",
	122: "MStar Semiconductor, Inc.",
	123: "Hanlynn Technologies",
	124: "A & R Cambridge",
	125: "Seers Technology Co. Ltd",
	126: "Sports Tracking Technologies Ltd.",
	127: "Autonet Mobile",
	128: "DeLorme Publishing Company, Inc.",
	129: "WuXi Vimicro",
	130: "Sennheiser Communications A/S",
	131: "TimeKeeping Systems, Inc.",
	132: "Ludus Helsinki Ltd.",
	133: "BlueRadios, Inc.",
	134: "equinox AG",
	135: "Garmin International, Inc.",
	136: "Ecotest",
	137: "GN ReSound A/S",
	138: "Jawbone",
	139: "Topcorn Positioning Systems, LLC",
	140: "Qualcomm Labs, Inc.",
	141: "Zscan Software",
	142: "Quintic Corp.",
	143: "Stollman E+V GmbH",
	144: "Funai Electric Co., Ltd.",
	145: "Advanced PANMOBIL Systems GmbH & Co. KG",
	146: "ThinkOptics, Inc.",
	147: "Universal Electronics, Inc.",
	148: "Airoha Technology Corp.",
	149: "NEC Lighting, Ltd.",
	150: "ODM Technology, Inc.",
	151: "ConnecteDevice Ltd.",
	152: "zer01.tv GmbH",
	153: "i.Tech Dynamic Global Distribution Ltd.",
	154: "Alpwise",
	155: "Jiangsu Toppower Automotive Electronics Co., Ltd.",
	156: "Colorfy, Inc.",
	157: "Geoforce Inc.",
	158: "Bose Corporation",
	159: "Suunto Oy",
	160: "Kensington Computer Products Group",
	161: "SR-Medizinelektronik",
	162: "Vertu Corporation Limited",
	163: "Meta Watch Ltd.",
	164: "LINAK A/S",
	165: "OTL Dynamics LLC",
	166: "Panda Ocean Inc.",
	167: "Visteon Corporation",
	168: "ARP Devices Limited",
	169: "Magneti Marelli S.p.A",
	170: "CAEN RFID srl",
	171: "Ingenieur-Systemgruppe Zahn GmbH",
	172: "Green Throttle Games",
	173: "Peter Systemtechnik GmbH",
	174: "Omegawave Oy",
	175: "Cinetix",
	176: "Passif Semiconductor Corp",
	177: "Saris Cycling Group, Inc",
	178: "Bekey A/S",
	179: "Clarinox Technologies Pty. Ltd.",
	180: "BDE Technology Co., Ltd.",
	181: "Swirl Networks",
	182: "Meso international",
	183: "TreLab Ltd",
	184: "Qualcomm Innovation Center, Inc. (QuIC)",
	185: "Johnson Controls, Inc.",
	186: "Starkey Laboratories Inc.",
	187: "S-Power Electronics Limited",
	188: "Ace Sensor Inc",
	189: "Aplix Corporation",
	190: "AAMP of America",
	191: "Stalmart Technology Limited",
	192: "AMICCOM Electronics Corporation",
	193: "Shenzhen Excelsecu Data Technology Co.,Ltd",
	194: "Geneq Inc.",
	195: "adidas AG",
	196: "LG Electronics",
	197: "Onset Computer Corporation",
	198: "Selfly BV",
	199: "Quuppa Oy.",
	200: "GeLo Inc",
	201: "Evluma",
	202: "MC10",
	203: "Binauric SE",
	204: "Beats Electronics",
	205: "Microchip Technology Inc.",
	206: "Elgato Systems GmbH",
	207: "ARCHOS SA",
	209: "Polar Electro Europe B.V.",
	210: "Dialog Semiconductor B.V.",
	211: "Taixingbang Technology (HK) Co,. LTD.",
	212: "Kawantech",
	213: "Austco Communication Systems",
	214: "Timex Group USA, Inc.",
	215: "Qualcomm Technologies, Inc.",
	216: "Qualcomm Connected Experiences, Inc.",
	217: "Voyetra Turtle Beach",
	218: "txtr GmbH",
	219: "Biosentronics",
	220: "Procter & Gamble",
	221: "Hosiden Corporation",
	222: "Muzik LLC",
	223: "Misfit Wearables Corp",
	224: "Google",
	225: "Danlers Ltd",
	226: "Semilink Inc",
	227: "inMusic Brands, Inc",
	228: "L.S. Research Inc.",
	229: "Eden Software Consultants Ltd.",
	230: "Freshtemp",
	231: "KS Technologies",
	232: "ACTS Technologies",
	233: "Vtrack Systems",
	234: "Nielsen-Kellerman Company",
	235: "Server Technology, Inc.",
	236: "BioResearch Associates",
	237: "Jolly Logic, LLC",
	238: "Above Average Outcomes, Inc.",
	239: "Bitsplitters GmbH",
	240: "PayPal, Inc.",
	241: "Witron Technology Limited",
	242: "Morse Project Inc.",
	243: "Kent Displays Inc.",
	244: "Nautilus Inc.",
	245: "Smartifier Oy",
	246: "Elcometer Limited",
	247: "VSN Technologies Inc.",
	248: "AceUni Corp., Ltd.",
}

// ManufacturerName resolves a company identifier. It never returns an empty string.
func ManufacturerName(id uint16) string {
	if id == manufacturerIDInternalUse {
		return ManufacturerInternalUse
	}

	if name, ok := manufacturers[id]; ok {
		return name
	}

	return ManufacturerNotAssigned
}
