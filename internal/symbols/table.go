package symbols

// cryptoGeneralSentinel marks aliases that indicate crypto as a topic
// rather than a specific instrument. The resolver never emits it.
const cryptoGeneralSentinel = "__CRYPTO_GENERAL__"

// aliasTable maps lower-cased free-text names to canonical symbols.
// Multi-word names must appear here so longest-match resolution can claim
// them before their single-word substrings.
var aliasTable = map[string]string{
	// Indian - new-age tech
	"zomato": "ZOMATO", "swiggy": "SWIGGY", "paytm": "PAYTM", "one97": "PAYTM",
	"nykaa": "NYKAA", "policybazaar": "POLICYBZR", "delhivery": "DELHIVERY",
	"irctc": "IRCTC", "easemytrip": "EASEMYTRIP", "jio financial": "JIOFIN",
	"jio": "JIOFIN",
	// Indian - IT
	"tcs": "TCS", "infosys": "INFY", "infy": "INFY", "wipro": "WIPRO",
	"hcl tech": "HCLTECH", "hcltech": "HCLTECH", "tech mahindra": "TECHM",
	"techm": "TECHM", "persistent": "PERSISTENT", "coforge": "COFORGE",
	"ltimindtree": "LTIM",
	// Indian - banking
	"hdfc bank": "HDFCBANK", "hdfcbank": "HDFCBANK", "icici bank": "ICICIBANK",
	"icicibank": "ICICIBANK", "sbi": "SBIN", "kotak": "KOTAKBANK",
	"axis bank": "AXISBANK", "indusind": "INDUSINDBK", "federal bank": "FEDERALBNK",
	"bandhan bank": "BANDHANBNK", "idfc first": "IDFCFIRSTB",
	// Indian - energy / conglomerate
	"reliance": "RELIANCE", "ril": "RELIANCE", "ongc": "ONGC", "bpcl": "BPCL",
	"ntpc": "NTPC", "power grid": "POWERGRID", "tata power": "TATAPOWER",
	"adani green": "ADANIGREEN", "adani enterprises": "ADANIENT",
	"adani ports": "ADANIPORTS", "adani": "ADANIENT",
	// Indian - large caps
	"bharti airtel": "BHARTIARTL", "airtel": "BHARTIARTL",
	"itc": "ITC", "hul": "HINDUNILVR", "hindustan unilever": "HINDUNILVR",
	"maruti": "MARUTI", "tata motors": "TATAMOTORS",
	"bajaj finance": "BAJFINANCE", "asian paints": "ASIANPAINT",
	"sun pharma": "SUNPHARMA", "dr reddy": "DRREDDY", "titan": "TITAN",
	"l&t": "LT", "larsen": "LT",
	"tata steel": "TATASTEEL", "jsw steel": "JSWSTEEL",
	"hindalco": "HINDALCO", "coal india": "COALINDIA",
	"ultratech": "ULTRACEMCO", "cipla": "CIPLA",
	"apollo hospitals": "APOLLOHOSP", "apollo": "APOLLOHOSP",
	"divis lab": "DIVISLAB", "hdfc life": "HDFCLIFE", "sbi life": "SBILIFE",
	"bajaj finserv": "BAJAJFINSV", "mahindra": "M&M", "m&m": "M&M",
	"eicher": "EICHERMOT", "hero motocorp": "HEROMOTOCO",
	"hal": "HAL", "bel": "BEL", "vedanta": "VEDL",

	// US / global
	"apple": "AAPL", "aapl": "AAPL",
	"google": "GOOGL", "googl": "GOOGL", "alphabet": "GOOGL",
	"microsoft": "MSFT", "msft": "MSFT",
	"amazon": "AMZN", "amzn": "AMZN",
	"tesla": "TSLA", "tsla": "TSLA",
	"meta": "META", "facebook": "META",
	"nvidia": "NVDA", "nvda": "NVDA",
	"netflix": "NFLX", "nflx": "NFLX",
	"amd":   "AMD",
	"intel": "INTC", "intc": "INTC",
	"salesforce": "CRM", "crm": "CRM",
	"oracle": "ORCL", "orcl": "ORCL",
	"paypal": "PYPL", "pypl": "PYPL",
	"disney": "DIS", "dis": "DIS",
	"boeing":   "BA",
	"jpmorgan": "JPM", "jp morgan": "JPM", "jpm": "JPM",
	"goldman sachs": "GS", "goldman": "GS",
	"visa":       "V",
	"mastercard": "MA",
	"walmart":    "WMT", "wmt": "WMT",
	"coca cola": "KO", "coca-cola": "KO", "coke": "KO",
	"pepsi": "PEP", "pepsico": "PEP",
	"pfizer": "PFE",
	"exxon":  "XOM", "exxon mobil": "XOM",
	"chevron":   "CVX",
	"berkshire": "BRK-B", "berkshire hathaway": "BRK-B",
	"spotify":   "SPOT",
	"uber":      "UBER",
	"airbnb":    "ABNB",
	"snowflake": "SNOW",
	"palantir":  "PLTR",
	"coinbase":  "COIN",
	"block":     "SQ", "square": "SQ",
	"shopify":   "SHOP",
	"zoom":      "ZM",
	"alibaba":   "BABA",
	"tsmc":      "TSM",
	"sony":      "SONY",
	"nike":      "NKE",
	"starbucks": "SBUX",

	// Crypto
	"bitcoin": "BTC", "btc": "BTC",
	"ethereum": "ETH", "eth": "ETH",
	"solana": "SOL", "sol": "SOL",
	"ripple": "XRP", "xrp": "XRP",
	"cardano": "ADA", "ada": "ADA",
	"dogecoin": "DOGE", "doge": "DOGE",
	"polkadot":       "DOT",
	"avalanche":      "AVAX",
	"polygon":        "MATIC",
	"chainlink":      "LINK",
	"bnb":            "BNB",
	"cryptocurrency": cryptoGeneralSentinel,
	"crypto":         cryptoGeneralSentinel,

	// Commodities
	"gold": "GOLD", "silver": "SILVER",
	"crude oil": "CRUDE", "crude": "CRUDE", "oil": "CRUDE",
	"natural gas": "NATURALGAS",
}

// providerTable maps canonical symbols to the quote provider's format.
// Indian equities carry the .NS suffix, crypto pairs -USD, commodity
// futures =F, and indices a leading caret.
var providerTable = map[string]string{
	// Indian IT
	"TCS": "TCS.NS", "INFY": "INFY.NS", "WIPRO": "WIPRO.NS",
	"HCLTECH": "HCLTECH.NS", "TECHM": "TECHM.NS", "LTI": "LTIM.NS",
	"LTIM": "LTIM.NS", "PERSISTENT": "PERSISTENT.NS", "COFORGE": "COFORGE.NS",

	// Indian banking
	"HDFCBANK": "HDFCBANK.NS", "ICICIBANK": "ICICIBANK.NS", "SBIN": "SBIN.NS",
	"KOTAKBANK": "KOTAKBANK.NS", "AXISBANK": "AXISBANK.NS", "BANKBARODA": "BANKBARODA.NS",
	"PNB": "PNB.NS", "INDUSINDBK": "INDUSINDBK.NS", "IDFCFIRSTB": "IDFCFIRSTB.NS",
	"BANDHANBNK": "BANDHANBNK.NS", "FEDERALBNK": "FEDERALBNK.NS",

	// Indian energy
	"RELIANCE": "RELIANCE.NS", "ONGC": "ONGC.NS", "BPCL": "BPCL.NS",
	"IOC": "IOC.NS", "NTPC": "NTPC.NS", "POWERGRID": "POWERGRID.NS",
	"ADANIGREEN": "ADANIGREEN.NS", "ADANIENT": "ADANIENT.NS",
	"ADANIPORTS": "ADANIPORTS.NS", "ADANIPOWER": "ADANIPOWER.NS",

	// Indian new-age / consumer internet
	"ZOMATO": "ZOMATO.NS", "PAYTM": "PAYTM.NS", "ONEPAYTM": "PAYTM.NS",
	"ONE97": "PAYTM.NS", "NYKAA": "NYKAA.NS", "POLICYBZR": "POLICYBZR.NS",
	"DELHIVERY": "DELHIVERY.NS", "CARTRADE": "CARTRADE.NS",
	"EASEMYTRIP": "EASEMYTRIP.NS", "IRCTC": "IRCTC.NS", "JIOFIN": "JIOFIN.NS",
	"SWIGGY": "SWIGGY.NS",

	// Indian large caps
	"BHARTIARTL": "BHARTIARTL.NS", "ITC": "ITC.NS", "HINDUNILVR": "HINDUNILVR.NS",
	"MARUTI": "MARUTI.NS", "TATAMOTORS": "TATAMOTORS.NS", "BAJFINANCE": "BAJFINANCE.NS",
	"ASIANPAINT": "ASIANPAINT.NS", "SUNPHARMA": "SUNPHARMA.NS",
	"DRREDDY": "DRREDDY.NS", "TITAN": "TITAN.NS", "LT": "LT.NS",
	"TATASTEEL": "TATASTEEL.NS", "JSWSTEEL": "JSWSTEEL.NS",
	"HINDALCO": "HINDALCO.NS", "COALINDIA": "COALINDIA.NS",
	"ULTRACEMCO": "ULTRACEMCO.NS", "GRASIM": "GRASIM.NS", "CIPLA": "CIPLA.NS",
	"APOLLOHOSP": "APOLLOHOSP.NS", "DIVISLAB": "DIVISLAB.NS",
	"HDFCLIFE": "HDFCLIFE.NS", "SBILIFE": "SBILIFE.NS",
	"BAJAJFINSV": "BAJAJFINSV.NS", "M&M": "M&M.NS", "MAHINDRA": "M&M.NS",
	"EICHERMOT": "EICHERMOT.NS", "HEROMOTOCO": "HEROMOTOCO.NS",
	"TATAPOWER": "TATAPOWER.NS", "HAL": "HAL.NS", "BEL": "BEL.NS",
	"VEDL": "VEDL.NS",

	// Indian indices
	"NIFTY50": "^NSEI", "SENSEX": "^BSESN",
	"BANKNIFTY": "^NSEBANK", "NIFTYIT": "^CNXIT",

	// US / global
	"AAPL": "AAPL", "APPLE": "AAPL",
	"GOOGL": "GOOGL", "GOOGLE": "GOOGL", "GOOG": "GOOGL", "ALPHABET": "GOOGL",
	"MSFT": "MSFT", "MICROSOFT": "MSFT",
	"AMZN": "AMZN", "AMAZON": "AMZN",
	"TSLA": "TSLA", "TESLA": "TSLA",
	"META": "META", "FACEBOOK": "META", "FB": "META",
	"NVDA": "NVDA", "NVIDIA": "NVDA",
	"NFLX": "NFLX", "NETFLIX": "NFLX",
	"AMD":  "AMD",
	"INTC": "INTC", "INTEL": "INTC",
	"CRM": "CRM", "SALESFORCE": "CRM",
	"ORCL": "ORCL", "ORACLE": "ORCL",
	"PYPL": "PYPL", "PAYPAL": "PYPL",
	"DIS": "DIS", "DISNEY": "DIS",
	"BA": "BA", "BOEING": "BA",
	"JPM": "JPM", "JPMORGAN": "JPM",
	"GS": "GS", "GOLDMAN": "GS",
	"V": "V", "VISA": "V",
	"MA": "MA", "MASTERCARD": "MA",
	"WMT": "WMT", "WALMART": "WMT",
	"KO": "KO", "COCACOLA": "KO", "COCA-COLA": "KO",
	"PEP": "PEP", "PEPSI": "PEP",
	"JNJ": "JNJ",
	"PFE": "PFE", "PFIZER": "PFE",
	"UNH": "UNH",
	"XOM": "XOM", "EXXON": "XOM",
	"CVX": "CVX", "CHEVRON": "CVX",
	"BRK-B": "BRK-B", "BERKSHIRE": "BRK-B",
	"SPOT": "SPOT", "SPOTIFY": "SPOT",
	"UBER": "UBER",
	"ABNB": "ABNB", "AIRBNB": "ABNB",
	"SNOW": "SNOW", "SNOWFLAKE": "SNOW",
	"PLTR": "PLTR", "PALANTIR": "PLTR",
	"COIN": "COIN", "COINBASE": "COIN",
	"SQ": "SQ", "BLOCK": "SQ",
	"SHOP": "SHOP", "SHOPIFY": "SHOP",
	"ZM": "ZM", "ZOOM": "ZM",
	"BABA": "BABA", "ALIBABA": "BABA",
	"TSM": "TSM", "TSMC": "TSM",
	"SONY": "SONY",
	"NKE":  "NKE", "NIKE": "NKE",
	"SBUX": "SBUX", "STARBUCKS": "SBUX",

	// US indices
	"SPX": "^GSPC", "SP500": "^GSPC", "S&P500": "^GSPC", "S&P": "^GSPC",
	"DOWJONES": "^DJI", "DOW": "^DJI", "DJI": "^DJI",
	"NASDAQ": "^IXIC", "NASDAQCOMP": "^IXIC",
	"VIX":         "^VIX",
	"RUSSELL2000": "^RUT",

	// Crypto
	"BTC": "BTC-USD", "BITCOIN": "BTC-USD", "BTC-USD": "BTC-USD",
	"ETH": "ETH-USD", "ETHEREUM": "ETH-USD", "ETH-USD": "ETH-USD",
	"SOL": "SOL-USD", "SOLANA": "SOL-USD", "SOL-USD": "SOL-USD",
	"BNB": "BNB-USD", "BNB-USD": "BNB-USD",
	"XRP": "XRP-USD", "RIPPLE": "XRP-USD", "XRP-USD": "XRP-USD",
	"ADA": "ADA-USD", "CARDANO": "ADA-USD", "ADA-USD": "ADA-USD",
	"DOGE": "DOGE-USD", "DOGECOIN": "DOGE-USD", "DOGE-USD": "DOGE-USD",
	"DOT": "DOT-USD", "POLKADOT": "DOT-USD",
	"AVAX": "AVAX-USD", "AVALANCHE": "AVAX-USD",
	"MATIC": "MATIC-USD", "POLYGON": "MATIC-USD",
	"LINK": "LINK-USD", "CHAINLINK": "LINK-USD",

	// Commodities
	"GOLD": "GC=F", "SILVER": "SI=F", "CRUDE": "CL=F",
	"CRUDEOIL": "CL=F", "NATURALGAS": "NG=F",
}

// cryptoTopicWords flag a query as being about crypto in general.
var cryptoTopicWords = []string{
	"crypto", "cryptocurrency", "bitcoin", "ethereum", "blockchain",
	"defi", "nft", "web3", "altcoin", "token", "mining",
}
