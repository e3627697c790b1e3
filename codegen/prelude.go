package codegen

// The standard prelude emitted at the top of every generated program.
//
// Each Std.* catalog module is paired with the C++ namespace snippet below;
// Generate fails if the catalog lists a module with no snippet, which keeps
// the descriptor and the prelude from drifting apart. The snippets are
// emitted inside one `namespace Std { ... }` block in catalog order.

const preludeIncludes = `#include <iostream>
#include <fstream>
#include <sstream>
#include <string>
#include <functional>
#include <optional>
#include <vector>
#include <unordered_map>
#include <unordered_set>
#include <algorithm>
#include <chrono>
#include <cmath>
#include <cstdlib>
#include <random>
#include <stdexcept>
`

var preludeSnippets = map[string]string{
	"Std.IO": `namespace IO {
    inline void print(const std::string& s) { std::cout << s; }
    inline void println(const std::string& s) { std::cout << s << std::endl; }
    inline void eprint(const std::string& s) { std::cerr << s; }
    inline void eprintln(const std::string& s) { std::cerr << s << std::endl; }
    inline std::string readLine() {
        std::string line;
        std::getline(std::cin, line);
        return line;
    }
    inline std::string read() {
        std::string content, line;
        while (std::getline(std::cin, line)) content += line + "\n";
        return content;
    }
    inline std::string readChar() { char c; std::cin >> c; return std::string(1, c); }
    inline std::optional<std::string> readFile(const std::string& path) {
        std::ifstream file(path);
        if (!file) return std::nullopt;
        std::stringstream buffer;
        buffer << file.rdbuf();
        return buffer.str();
    }
    inline bool writeFile(const std::string& path, const std::string& content) {
        std::ofstream file(path);
        if (!file) return false;
        file << content;
        return true;
    }
    inline bool appendFile(const std::string& path, const std::string& content) {
        std::ofstream file(path, std::ios::app);
        if (!file) return false;
        file << content;
        return true;
    }
}`,

	"Std.Parse": `namespace Parse {
    inline std::optional<int> parseInt(const std::string& s) {
        try {
            size_t pos;
            int val = std::stoi(s, &pos);
            if (pos == s.length()) return val;
            return std::nullopt;
        } catch (...) { return std::nullopt; }
    }
    inline std::optional<double> parseFloat(const std::string& s) {
        try {
            size_t pos;
            double val = std::stod(s, &pos);
            if (pos == s.length()) return val;
            return std::nullopt;
        } catch (...) { return std::nullopt; }
    }
    inline std::optional<bool> parseBool(const std::string& s) {
        if (s == "true") return true;
        if (s == "false") return false;
        return std::nullopt;
    }
}`,

	"Std.Option": `namespace Option {
    template<typename T> bool isSome(const std::optional<T>& opt) { return opt.has_value(); }
    template<typename T> bool isNone(const std::optional<T>& opt) { return !opt.has_value(); }
    template<typename T> T unwrap(const std::optional<T>& opt) { return opt.value(); }
    template<typename T> T unwrapOr(const std::optional<T>& opt, T fallback) {
        return opt.has_value() ? opt.value() : fallback;
    }
}`,

	"Std.Math": `namespace Math {
    constexpr double PI = 3.14159265358979323846;
    constexpr double E = 2.71828182845904523536;
    inline int abs(int x) { return std::abs(x); }
    inline double abs(double x) { return std::fabs(x); }
    inline int min(int a, int b) { return std::min(a, b); }
    inline double min(double a, double b) { return std::min(a, b); }
    inline int max(int a, int b) { return std::max(a, b); }
    inline double max(double a, double b) { return std::max(a, b); }
    inline int clamp(int val, int low, int high) { return std::max(low, std::min(val, high)); }
    inline double clamp(double val, double low, double high) { return std::max(low, std::min(val, high)); }
    inline double pow(double base, double exp) { return std::pow(base, exp); }
    inline double sqrt(double x) { return std::sqrt(x); }
    inline double floor(double x) { return std::floor(x); }
    inline double ceil(double x) { return std::ceil(x); }
    inline double round(double x) { return std::round(x); }
}`,

	"Std.String": `namespace String {
    inline int length(const std::string& s) { return static_cast<int>(s.length()); }
    inline bool isEmpty(const std::string& s) { return s.empty(); }
    inline std::string substring(const std::string& s, int start, int len) {
        if (start < 0 || start >= static_cast<int>(s.size())) return "";
        return s.substr(start, len);
    }
    inline std::vector<std::string> split(const std::string& s, const std::string& sep) {
        std::vector<std::string> parts;
        if (sep.empty()) { parts.push_back(s); return parts; }
        size_t start = 0, pos;
        while ((pos = s.find(sep, start)) != std::string::npos) {
            parts.push_back(s.substr(start, pos - start));
            start = pos + sep.size();
        }
        parts.push_back(s.substr(start));
        return parts;
    }
    inline std::string join(const std::vector<std::string>& parts, const std::string& sep) {
        std::string out;
        for (size_t i = 0; i < parts.size(); i++) {
            if (i > 0) out += sep;
            out += parts[i];
        }
        return out;
    }
    inline std::string trim(const std::string& s) {
        size_t start = s.find_first_not_of(" \t\n\r");
        if (start == std::string::npos) return "";
        size_t end = s.find_last_not_of(" \t\n\r");
        return s.substr(start, end - start + 1);
    }
    inline std::string toUpper(const std::string& s) {
        std::string result = s;
        std::transform(result.begin(), result.end(), result.begin(), ::toupper);
        return result;
    }
    inline std::string toLower(const std::string& s) {
        std::string result = s;
        std::transform(result.begin(), result.end(), result.begin(), ::tolower);
        return result;
    }
    inline bool contains(const std::string& s, const std::string& sub) {
        return s.find(sub) != std::string::npos;
    }
    inline std::string replace(const std::string& s, const std::string& oldSub, const std::string& newSub) {
        if (oldSub.empty()) return s;
        std::string result = s;
        size_t pos = 0;
        while ((pos = result.find(oldSub, pos)) != std::string::npos) {
            result.replace(pos, oldSub.size(), newSub);
            pos += newSub.size();
        }
        return result;
    }
}`,

	"Std.Array": `namespace Array {
    template<typename T> int length(const std::vector<T>& v) { return static_cast<int>(v.size()); }
    template<typename T> void push(std::vector<T>& v, T elem) { v.push_back(elem); }
    template<typename T> T pop(std::vector<T>& v) { T last = v.back(); v.pop_back(); return last; }
    template<typename T> bool contains(const std::vector<T>& v, const T& elem) {
        return std::find(v.begin(), v.end(), elem) != v.end();
    }
    template<typename T> int indexOf(const std::vector<T>& v, const T& elem) {
        auto it = std::find(v.begin(), v.end(), elem);
        return it == v.end() ? -1 : static_cast<int>(it - v.begin());
    }
    template<typename T> void sort(std::vector<T>& v) { std::sort(v.begin(), v.end()); }
    template<typename T> void reverse(std::vector<T>& v) { std::reverse(v.begin(), v.end()); }
    template<typename T, typename F> auto map(const std::vector<T>& v, F fn) {
        std::vector<decltype(fn(v[0]))> out;
        out.reserve(v.size());
        for (const auto& e : v) out.push_back(fn(e));
        return out;
    }
    template<typename T, typename F> std::vector<T> filter(const std::vector<T>& v, F fn) {
        std::vector<T> out;
        for (const auto& e : v) if (fn(e)) out.push_back(e);
        return out;
    }
    template<typename T, typename A, typename F> A reduce(const std::vector<T>& v, A init, F fn) {
        A acc = init;
        for (const auto& e : v) acc = fn(acc, e);
        return acc;
    }
}`,

	"Std.Map": `namespace Map {
    template<typename K, typename V> void insert(std::unordered_map<K, V>& m, K key, V value) { m[key] = value; }
    template<typename K, typename V> std::optional<V> get(const std::unordered_map<K, V>& m, const K& key) {
        auto it = m.find(key);
        if (it == m.end()) return std::nullopt;
        return it->second;
    }
    template<typename K, typename V> bool remove(std::unordered_map<K, V>& m, const K& key) { return m.erase(key) > 0; }
    template<typename K, typename V> bool containsKey(const std::unordered_map<K, V>& m, const K& key) {
        return m.find(key) != m.end();
    }
    template<typename K, typename V> int size(const std::unordered_map<K, V>& m) { return static_cast<int>(m.size()); }
}`,

	"Std.Set": `namespace Set {
    template<typename T> bool add(std::unordered_set<T>& s, T elem) { return s.insert(elem).second; }
    template<typename T> bool remove(std::unordered_set<T>& s, const T& elem) { return s.erase(elem) > 0; }
    template<typename T> bool contains(const std::unordered_set<T>& s, const T& elem) { return s.find(elem) != s.end(); }
    template<typename T> int size(const std::unordered_set<T>& s) { return static_cast<int>(s.size()); }
}`,

	"Std.File": `namespace File {
    inline std::optional<std::string> readAll(const std::string& path) {
        std::ifstream file(path);
        if (!file) return std::nullopt;
        std::stringstream buffer;
        buffer << file.rdbuf();
        return buffer.str();
    }
    inline bool writeAll(const std::string& path, const std::string& content) {
        std::ofstream file(path);
        if (!file) return false;
        file << content;
        return true;
    }
    inline bool exists(const std::string& path) {
        std::ifstream file(path);
        return file.good();
    }
}`,

	"Std.Time": `namespace Time {
    inline double now() {
        auto t = std::chrono::system_clock::now().time_since_epoch();
        return std::chrono::duration<double>(t).count();
    }
    inline double elapsed(double since) { return now() - since; }
}`,

	"Std.Random": `namespace Random {
    inline std::mt19937& engine() {
        static std::mt19937 gen{std::random_device{}()};
        return gen;
    }
    inline int intRange(int low, int high) {
        std::uniform_int_distribution<int> dist(low, high);
        return dist(engine());
    }
    inline double floatRange(double low, double high) {
        std::uniform_real_distribution<double> dist(low, high);
        return dist(engine());
    }
}`,

	"Std.System": `namespace System {
    inline std::vector<std::string>& argsStorage() {
        static std::vector<std::string> args;
        return args;
    }
    inline std::vector<std::string> args() { return argsStorage(); }
    inline void exit(int status) { std::exit(status); }
    inline std::optional<std::string> env(const std::string& name) {
        const char* val = std::getenv(name.c_str());
        if (val == nullptr) return std::nullopt;
        return std::string(val);
    }
}`,
}

// mgToStringHelper backs interpolated-string lowering: every interpolated
// fragment goes through one generic stringification call.
const mgToStringHelper = `template<typename T>
std::string mg_to_string(const T& val) {
    std::ostringstream oss;
    oss << val;
    return oss.str();
}
inline std::string mg_to_string(const std::string& val) { return val; }
inline std::string mg_to_string(bool val) { return val ? "true" : "false"; }
`
